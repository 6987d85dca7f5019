package repository

import (
	"DevNest/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepo interface {
	FindBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error)
	GetOrCreateTags(ctx context.Context, tags []*model.Tag) ([]*model.Tag, error)
}

type tagRepoImpl struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepo {
	return &tagRepoImpl{
		db: db,
	}
}

func (s *tagRepoImpl) FindBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error) {
	if len(slugs) == 0 {
		return []*model.Tag{}, nil
	}
	var tags []*model.Tag
	if err := conn(ctx, s.db).Where("slug IN ?", slugs).Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "find tags by slugs")
	}
	return tags, nil
}

// GetOrCreateTags 按 slug 插入缺失的标签，并发插入同一 slug 时以先写入者的展示名为准。
// 返回顺序与入参一致；在 ctx 携带的事务中调用时与帖子写入一同提交
func (s *tagRepoImpl) GetOrCreateTags(ctx context.Context, tags []*model.Tag) ([]*model.Tag, error) {
	if len(tags) == 0 {
		return []*model.Tag{}, nil
	}
	db := conn(ctx, s.db)

	slugs := make([]string, 0, len(tags))
	for _, tag := range tags {
		slugs = append(slugs, tag.Slug)
		if tag.ID != 0 {
			continue
		}
		row := model.Tag{Name: tag.Name, Slug: tag.Slug, Description: tag.Description, CreatedAt: time.Now()}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return nil, errors.Wrapf(err, "create tag %q", tag.Slug)
		}
	}

	var stored []*model.Tag
	if err := db.Where("slug IN ?", slugs).Find(&stored).Error; err != nil {
		return nil, errors.Wrap(err, "reload tags")
	}

	bySlug := make(map[string]*model.Tag, len(stored))
	for _, tag := range stored {
		bySlug[tag.Slug] = tag
	}
	result := make([]*model.Tag, 0, len(slugs))
	for _, slug := range slugs {
		if tag, ok := bySlug[slug]; ok {
			result = append(result, tag)
		}
	}
	return result, nil
}
