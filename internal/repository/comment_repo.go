package repository

import (
	"DevNest/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepo interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id uint64) (*model.Comment, error)
	GetCommentInPost(ctx context.Context, id, postID uint64) (*model.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error)
	GetCommentsByUserID(ctx context.Context, userID uint64, limit, offset int) ([]*model.Comment, int64, error)
	UpdateBody(ctx context.Context, id uint64, body string) error
	SoftDelete(ctx context.Context, id uint64) error

	IncrLikes(ctx context.Context, id uint64) error
	DecrLikes(ctx context.Context, id uint64) (clamped bool, err error)
	GetLikesCount(ctx context.Context, id uint64) (int64, error)
	// LockLikesCount 同 GetLikesCount，并在当前事务内锁定评论行
	LockLikesCount(ctx context.Context, id uint64) (int64, error)
	SetLikesCount(ctx context.Context, id uint64, count int64) error
}

type commentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &commentRepoImpl{db: db}
}

func (s *commentRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return errors.Wrap(conn(ctx, s.db).Omit(clause.Associations).Create(comment).Error, "create comment")
}

// GetComment 包含已软删除的评论
func (s *commentRepoImpl) GetComment(ctx context.Context, id uint64) (*model.Comment, error) {
	var comment model.Comment
	if err := conn(ctx, s.db).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *commentRepoImpl) GetCommentInPost(ctx context.Context, id, postID uint64) (*model.Comment, error) {
	var comment model.Comment
	err := conn(ctx, s.db).Where("id = ? AND post_id = ?", id, postID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID 返回帖子下全部评论（含软删除），按创建时间升序
func (s *commentRepoImpl) GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error) {
	comments := make([]*model.Comment, 0)
	err := conn(ctx, s.db).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (s *commentRepoImpl) GetCommentsByUserID(ctx context.Context, userID uint64, limit, offset int) ([]*model.Comment, int64, error) {
	var total int64
	db := conn(ctx, s.db)
	if err := db.Model(&model.Comment{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count user comments")
	}

	comments := make([]*model.Comment, 0)
	err := db.Preload("Post", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "title", "slug")
	}).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list user comments")
	}
	return comments, total, nil
}

// UpdateBody 更新正文，已删除的评论会被恢复
func (s *commentRepoImpl) UpdateBody(ctx context.Context, id uint64, body string) error {
	return conn(ctx, s.db).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"body":       body,
			"is_deleted": false,
			"updated_at": time.Now(),
		}).Error
}

func (s *commentRepoImpl) SoftDelete(ctx context.Context, id uint64) error {
	return conn(ctx, s.db).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"body":       nil,
			"is_deleted": true,
			"updated_at": time.Now(),
		}).Error
}

func (s *commentRepoImpl) IncrLikes(ctx context.Context, id uint64) error {
	return conn(ctx, s.db).Model(&model.Comment{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
}

// DecrLikes 计数已为 0 时不再扣减，clamped 返回 true
func (s *commentRepoImpl) DecrLikes(ctx context.Context, id uint64) (bool, error) {
	result := conn(ctx, s.db).Model(&model.Comment{}).
		Where("id = ? AND likes_count > 0", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 0, nil
}

func (s *commentRepoImpl) GetLikesCount(ctx context.Context, id uint64) (int64, error) {
	return pluckLikes(conn(ctx, s.db), id)
}

func (s *commentRepoImpl) LockLikesCount(ctx context.Context, id uint64) (int64, error) {
	return pluckLikes(conn(ctx, s.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func pluckLikes(db *gorm.DB, id uint64) (int64, error) {
	var counts []int64
	err := db.Model(&model.Comment{}).Where("id = ?", id).Pluck("likes_count", &counts).Error
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

func (s *commentRepoImpl) SetLikesCount(ctx context.Context, id uint64, count int64) error {
	return conn(ctx, s.db).Model(&model.Comment{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", count).Error
}
