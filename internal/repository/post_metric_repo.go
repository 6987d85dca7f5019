package repository

import (
	"DevNest/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostMetricRepo interface {
	// EnsureMetric 快照不存在时以全 0 创建
	EnsureMetric(ctx context.Context, postID uint64) error
	GetMetric(ctx context.Context, postID uint64) (*model.PostMetric, error)
	// LockMetric 同 GetMetric，并在当前事务内锁定该行
	LockMetric(ctx context.Context, postID uint64) (*model.PostMetric, error)
	IncrLikes(ctx context.Context, postID uint64, at time.Time) error
	DecrLikes(ctx context.Context, postID uint64) (clamped bool, err error)
	IncrViews(ctx context.Context, postID uint64, at time.Time) error
	SetLikes(ctx context.Context, postID uint64, likes int64) error
}

type postMetricRepoImpl struct {
	db *gorm.DB
}

func NewPostMetricRepository(db *gorm.DB) PostMetricRepo {
	return &postMetricRepoImpl{db: db}
}

func (r *postMetricRepoImpl) EnsureMetric(ctx context.Context, postID uint64) error {
	err := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostMetric{PostID: postID}).Error
	return errors.Wrap(err, "ensure post metric")
}

// GetMetric 快照不存在时返回 nil, nil
func (r *postMetricRepoImpl) GetMetric(ctx context.Context, postID uint64) (*model.PostMetric, error) {
	var metrics []*model.PostMetric
	if err := conn(ctx, r.db).Where("post_id = ?", postID).Limit(1).Find(&metrics).Error; err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return metrics[0], nil
}

func (r *postMetricRepoImpl) LockMetric(ctx context.Context, postID uint64) (*model.PostMetric, error) {
	var metrics []*model.PostMetric
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("post_id = ?", postID).Limit(1).Find(&metrics).Error
	if err != nil {
		return nil, errors.Wrap(err, "lock post metric")
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return metrics[0], nil
}

func (r *postMetricRepoImpl) IncrLikes(ctx context.Context, postID uint64, at time.Time) error {
	return conn(ctx, r.db).Model(&model.PostMetric{}).
		Where("post_id = ?", postID).
		UpdateColumns(map[string]any{
			"likes_count":  gorm.Expr("likes_count + 1"),
			"last_like_at": at,
		}).Error
}

// DecrLikes 计数已为 0 时不再扣减，clamped 返回 true
func (r *postMetricRepoImpl) DecrLikes(ctx context.Context, postID uint64) (bool, error) {
	result := conn(ctx, r.db).Model(&model.PostMetric{}).
		Where("post_id = ? AND likes_count > 0", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 0, nil
}

func (r *postMetricRepoImpl) IncrViews(ctx context.Context, postID uint64, at time.Time) error {
	return conn(ctx, r.db).Model(&model.PostMetric{}).
		Where("post_id = ?", postID).
		UpdateColumns(map[string]any{
			"views_count":  gorm.Expr("views_count + 1"),
			"last_view_at": at,
		}).Error
}

func (r *postMetricRepoImpl) SetLikes(ctx context.Context, postID uint64, likes int64) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.PostMetric{PostID: postID}).Error; err != nil {
			return err
		}
		return tx.Model(&model.PostMetric{}).
			Where("post_id = ?", postID).
			UpdateColumn("likes_count", likes).Error
	})
}
