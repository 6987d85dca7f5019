package service

import (
	"DevNest/internal/model"
	"DevNest/internal/pkg/slug"
	"DevNest/internal/repository"
	"context"
	"strings"
)

// TagCandidate 规范化后的标签
type TagCandidate struct {
	Slug string
	Name string
}

// NormalizeTags 去空白、按 slug 去重，保留首次出现的展示名与顺序。
// 无法产出 slug 的条目被丢弃；标签 slug 不做冲突后缀。
func NormalizeTags(raw []string) []TagCandidate {
	seen := make(map[string]struct{}, len(raw))
	out := make([]TagCandidate, 0, len(raw))
	for _, entry := range raw {
		name := strings.TrimSpace(entry)
		if name == "" {
			continue
		}
		key := slug.Slugify(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, TagCandidate{Slug: key, Name: name})
	}
	return out
}

type TagResolver struct {
	tagRepo repository.TagRepo
}

func NewTagResolver(tagRepo repository.TagRepo) *TagResolver {
	return &TagResolver{tagRepo: tagRepo}
}

// Resolve 一次批量查询已有标签；缺失的标签以 ID 为 0 的形式返回，由 Persist 在帖子写入事务中创建
func (r *TagResolver) Resolve(ctx context.Context, raw []string) ([]*model.Tag, error) {
	candidates := NormalizeTags(raw)
	if len(candidates) == 0 {
		return []*model.Tag{}, nil
	}

	slugs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		slugs = append(slugs, c.Slug)
	}
	existing, err := r.tagRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]*model.Tag, len(existing))
	for _, tag := range existing {
		bySlug[tag.Slug] = tag
	}

	tags := make([]*model.Tag, 0, len(candidates))
	for _, c := range candidates {
		if tag, ok := bySlug[c.Slug]; ok {
			tags = append(tags, tag)
			continue
		}
		tags = append(tags, &model.Tag{Slug: c.Slug, Name: c.Name})
	}
	return tags, nil
}

// Persist 创建 Resolve 返回的新标签，须在帖子写入事务的 ctx 中调用
func (r *TagResolver) Persist(ctx context.Context, tags []*model.Tag) ([]*model.Tag, error) {
	return r.tagRepo.GetOrCreateTags(ctx, tags)
}
