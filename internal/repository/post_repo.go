package repository

import (
	"DevNest/internal/model"
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post, tags []*model.Tag) error
	UpdatePost(ctx context.Context, post *model.Post, tags []*model.Tag) error
	DeletePost(ctx context.Context, id uint64) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	GetSlugOwner(ctx context.Context, slug string) (uint64, bool, error)
	ExistsPost(ctx context.Context, id uint64) (bool, error)
	SearchPosts(ctx context.Context, keyword string, limit, offset int) ([]*model.Post, int64, error)
	GetLatestPosts(ctx context.Context, limit int) ([]*model.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint64) ([]*model.Post, error)
	// GetPostsByIDs 按 ids 顺序返回，不存在的 ID 被跳过
	GetPostsByIDs(ctx context.Context, ids []uint64) ([]*model.Post, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func withPostRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Tags").Preload("Metric")
}

// CreatePost 在同一事务中写入帖子、标签关联并初始化计数快照，tags 须已持久化
func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post, tags []*model.Tag) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return errors.Wrap(err, "create post")
		}
		if err := replacePostTags(tx, post.ID, tags); err != nil {
			return err
		}
		metric := &model.PostMetric{PostID: post.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(metric).Error; err != nil {
			return errors.Wrap(err, "init post metric")
		}
		post.Tags = derefTags(tags)
		post.Metric = metric
		return nil
	})
}

func (s *PostRepoImpl) UpdatePost(ctx context.Context, post *model.Post, tags []*model.Tag) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(post).
			Omit(clause.Associations).
			Select("title", "slug", "summary", "content", "hero_image_url", "updated_at").
			Updates(post).Error
		if err != nil {
			return errors.Wrap(err, "update post")
		}
		if err = replacePostTags(tx, post.ID, tags); err != nil {
			return err
		}
		post.Tags = derefTags(tags)
		return nil
	})
}

// DeletePost 级联删除表态、评论、标签关联与计数快照
func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			model any
			where string
		}{
			{"reactions", &model.Reaction{}, "post_id = ?"},
			{"comments", &model.Comment{}, "post_id = ?"},
			{"post_tags", &model.PostTag{}, "post_id = ?"},
			{"post_metrics", &model.PostMetric{}, "post_id = ?"},
			{"posts", &model.Post{}, "id = ?"},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, id).Delete(step.model).Error; err != nil {
				return errors.Wrapf(err, "delete %s of post %d", step.name, id)
			}
		}
		return nil
	})
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	if err := withPostRelations(conn(ctx, s.db)).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	if err := withPostRelations(conn(ctx, s.db)).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetSlugOwner 返回占用该 slug 的帖子 ID
func (s *PostRepoImpl) GetSlugOwner(ctx context.Context, slug string) (uint64, bool, error) {
	var ids []uint64
	err := conn(ctx, s.db).Model(&model.Post{}).Where("slug = ?", slug).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return 0, false, errors.Wrap(err, "lookup slug owner")
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (s *PostRepoImpl) ExistsPost(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := conn(ctx, s.db).Model(&model.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SearchPosts 按标题或摘要模糊匹配，keyword 为空时返回全部
func (s *PostRepoImpl) SearchPosts(ctx context.Context, keyword string, limit, offset int) ([]*model.Post, int64, error) {
	query := conn(ctx, s.db).Model(&model.Post{})
	if keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	posts := make([]*model.Post, 0)
	err := withPostRelations(query).
		Order("published_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "search posts")
	}
	return posts, total, nil
}

func (s *PostRepoImpl) GetLatestPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := withPostRelations(conn(ctx, s.db)).
		Order("published_at DESC").Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) GetPostsByUserID(ctx context.Context, userID uint64) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := withPostRelations(conn(ctx, s.db)).
		Where("user_id = ?", userID).
		Order("updated_at DESC").Order("id DESC").
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) GetPostsByIDs(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var found []*model.Post
	if err := withPostRelations(conn(ctx, s.db)).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, errors.Wrap(err, "get posts by ids")
	}
	byID := make(map[uint64]*model.Post, len(found))
	for _, post := range found {
		byID[post.ID] = post
	}
	posts := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func replacePostTags(tx *gorm.DB, postID uint64, tags []*model.Tag) error {
	if err := tx.Where("post_id = ?", postID).Delete(&model.PostTag{}).Error; err != nil {
		return errors.Wrap(err, "clear post tags")
	}
	if len(tags) == 0 {
		return nil
	}
	links := make([]*model.PostTag, 0, len(tags))
	for _, tag := range tags {
		links = append(links, &model.PostTag{PostID: postID, TagID: tag.ID})
	}
	return errors.Wrap(tx.Create(links).Error, "link post tags")
}

func derefTags(tags []*model.Tag) []model.Tag {
	out := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, *tag)
	}
	return out
}
