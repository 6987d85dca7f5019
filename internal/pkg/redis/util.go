package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，键不存在时返回空串
func GetValue(ctx context.Context, key string) (string, error) {
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// TryLock 尝试加锁，retryTimes 为 -1 时一直重试
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	for i := 0; i < retryTimes || retryTimes == -1; i++ {
		success, err := Rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return false, nil
}

// UnLock 仅当锁仍由 value 持有时释放
func UnLock(ctx context.Context, key string, value interface{}) {
	Rdb.Eval(ctx, "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end", []string{key}, value)
}

// AddToSet 向集合添加成员
func AddToSet(ctx context.Context, key string, members ...interface{}) error {
	return Rdb.SAdd(ctx, key, members...).Err()
}

// GetSet 获取集合
func GetSet(ctx context.Context, key string) ([]string, error) {
	return Rdb.SMembers(ctx, key).Result()
}

// Rename 源键不存在时返回 false
func Rename(ctx context.Context, oldKey string, newKey string) (bool, error) {
	err := Rdb.Rename(ctx, oldKey, newKey).Err()
	if err != nil {
		if err.Error() == "ERR no such key" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Exists 判断键是否存在
func Exists(ctx context.Context, key string) (bool, error) {
	n, err := Rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// DeleteKey 删除一个或多个键
func DeleteKey(ctx context.Context, keys ...string) error {
	return Rdb.Del(ctx, keys...).Err()
}
