package redis

import (
	"DevNest/internal/model"
	"DevNest/internal/pkg/consts"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterVersionTTL 需覆盖一次回源读取的耗时
const counterVersionTTL = 24 * time.Hour

// fillCountersScript 版本号未变时才回填，避免覆盖回源期间发生的失效
var fillCountersScript = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if (v or '0') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'views', ARGV[2], 'likes', ARGV[3])
redis.call('EXPIRE', KEYS[1], ARGV[4])
return 1
`)

// PostCounters 帖子计数缓存
type PostCounters struct {
	Views int64
	Likes int64
}

func postEngagementKey(postID uint64) string {
	return consts.PostEngagementKey + strconv.FormatUint(postID, 10)
}

func postEngagementVerKey(postID uint64) string {
	return consts.PostEngagementVerKey + strconv.FormatUint(postID, 10)
}

func parseCounters(fields map[string]string) *PostCounters {
	if len(fields) == 0 {
		return nil
	}
	views, _ := strconv.ParseInt(fields["views"], 10, 64)
	likes, _ := strconv.ParseInt(fields["likes"], 10, 64)
	return &PostCounters{Views: views, Likes: likes}
}

// GetPostCounters 未命中时返回 nil
func GetPostCounters(ctx context.Context, postID uint64) (*PostCounters, error) {
	fields, err := Rdb.HGetAll(ctx, postEngagementKey(postID)).Result()
	if err != nil {
		return nil, err
	}
	return parseCounters(fields), nil
}

// GetCountersVersion 回源读取快照前调用，键不存在视为 0
func GetCountersVersion(ctx context.Context, postID uint64) (int64, error) {
	v, err := Rdb.Get(ctx, postEngagementVerKey(postID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

// SetPostCounters 仅当版本号仍为 version 时写入，filled 为 false 表示期间已被失效
func SetPostCounters(ctx context.Context, postID uint64, counters *PostCounters, ttl time.Duration, version int64) (bool, error) {
	keys := []string{postEngagementKey(postID), postEngagementVerKey(postID)}
	filled, err := fillCountersScript.Run(ctx, Rdb, keys,
		strconv.FormatInt(version, 10), counters.Views, counters.Likes, int64(ttl/time.Second)).Int()
	if err != nil {
		return false, err
	}
	return filled == 1, nil
}

// DeletePostCounters 删除缓存并递增版本号
func DeletePostCounters(ctx context.Context, postIDs ...uint64) error {
	if len(postIDs) == 0 {
		return nil
	}
	pipe := Rdb.TxPipeline()
	for _, id := range postIDs {
		verKey := postEngagementVerKey(id)
		pipe.Del(ctx, postEngagementKey(id))
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, counterVersionTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// MarkDirty 登记待对账的目标 ID
func MarkDirty(ctx context.Context, dirtyKey string, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		members = append(members, strconv.FormatUint(id, 10))
	}
	return AddToSet(ctx, dirtyKey, members...)
}

// MarkEngagementDirty 点赞类事件登记对应计数为待对账；浏览不需要对账
func MarkEngagementDirty(ctx context.Context, event *model.EngagementEvent) error {
	if event.Type == model.EventView {
		return nil
	}
	switch event.TargetType {
	case model.TargetPost:
		return MarkDirty(ctx, consts.PostDirtyKey, event.TargetID)
	case model.TargetComment:
		return MarkDirty(ctx, consts.CommentLikeDirtyKey, event.TargetID)
	default:
		return nil
	}
}
