package util

import (
	"strconv"
	"strings"
)

// StrSliceToUInt64Slice 将 Redis 集合成员转换为 ID 列表
func StrSliceToUInt64Slice(values []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TrimToNil 去除首尾空白，结果为空时返回 nil
func TrimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// PtrString 用于将 string 转换为 *string
func PtrString(s string) *string {
	return &s
}

// ClampInt 将 v 限制在 [lo, hi]，v 小于等于 0 时取 def
func ClampInt(v, def, lo, hi int) int {
	if v <= 0 {
		v = def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TotalPages 向上取整计算总页数
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
