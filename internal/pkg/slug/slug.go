package slug

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback 标题无法产出任何字母数字时使用的基础 slug
const Fallback = "post"

var ErrExhausted = errors.New("slug candidates exhausted")

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// LookupFunc 查询 candidate 是否已被占用，占用时返回占用者 ID
type LookupFunc func(ctx context.Context, candidate string) (ownerID uint64, taken bool, err error)

// Slugify 将任意文本转为 URL 安全的 slug，输入为空白时返回空串
func Slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)))
	folded, _, err := transform.String(stripMarks, input)
	if err != nil {
		folded = input
	}

	folded = strings.ToLower(folded)
	folded = nonAlnum.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// Unique 依次尝试 base、base-1、base-2 ... 直到找到未被占用的 slug。
// 被 excludeID 自己占用的候选视为可用；maxAttempts 为 0 表示不限制尝试次数。
func Unique(ctx context.Context, title string, excludeID uint64, maxAttempts int, lookup LookupFunc) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = Fallback
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		ownerID, taken, err := lookup(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken || (excludeID != 0 && ownerID == excludeID) {
			return candidate, nil
		}
		if maxAttempts > 0 && suffix >= maxAttempts {
			return "", ErrExhausted
		}
		candidate = base + "-" + strconv.Itoa(suffix)
	}
}
