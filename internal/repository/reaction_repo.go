package repository

import (
	"DevNest/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionKey 定位一条表态
type ReactionKey struct {
	TargetType string
	TargetID   uint64
	UserID     uint64
	Kind       string
}

type ReactionRepo interface {
	// InsertIfAbsent 已存在时不做任何修改，返回是否真正插入
	InsertIfAbsent(ctx context.Context, reaction *model.Reaction) (bool, error)
	// Delete 返回是否真正删除了一行
	Delete(ctx context.Context, key ReactionKey) (bool, error)
	Exists(ctx context.Context, key ReactionKey) (bool, error)
	// GetUserTargetIDs 用户在某帖子范围内表态过的目标 ID
	GetUserTargetIDs(ctx context.Context, targetType string, postID, userID uint64, kind string) ([]uint64, error)
	// CountGroupByPost 帖子范围内按目标聚合的表态数
	CountGroupByPost(ctx context.Context, targetType string, postID uint64, kind string) (map[uint64]int64, error)
	CountGroupByTargets(ctx context.Context, targetType string, targetIDs []uint64, kind string) (map[uint64]int64, error)
	CountByTarget(ctx context.Context, targetType string, targetID uint64, kind string) (int64, error)
}

type reactionRepoImpl struct {
	db *gorm.DB
}

func NewReactionRepo(db *gorm.DB) ReactionRepo {
	return &reactionRepoImpl{db: db}
}

type targetCount struct {
	TargetID uint64
	Total    int64
}

func (s *reactionRepoImpl) InsertIfAbsent(ctx context.Context, reaction *model.Reaction) (bool, error) {
	result := conn(ctx, s.db).Clauses(clause.OnConflict{DoNothing: true}).Create(reaction)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "insert reaction")
	}
	return result.RowsAffected == 1, nil
}

func (s *reactionRepoImpl) Delete(ctx context.Context, key ReactionKey) (bool, error) {
	result := conn(ctx, s.db).
		Where("target_type = ? AND target_id = ? AND user_id = ? AND kind = ?",
			key.TargetType, key.TargetID, key.UserID, key.Kind).
		Delete(&model.Reaction{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete reaction")
	}
	return result.RowsAffected == 1, nil
}

func (s *reactionRepoImpl) Exists(ctx context.Context, key ReactionKey) (bool, error) {
	var count int64
	err := conn(ctx, s.db).Model(&model.Reaction{}).
		Where("target_type = ? AND target_id = ? AND user_id = ? AND kind = ?",
			key.TargetType, key.TargetID, key.UserID, key.Kind).
		Count(&count).Error
	return count > 0, err
}

func (s *reactionRepoImpl) GetUserTargetIDs(ctx context.Context, targetType string, postID, userID uint64, kind string) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := conn(ctx, s.db).Model(&model.Reaction{}).
		Where("target_type = ? AND post_id = ? AND user_id = ? AND kind = ?", targetType, postID, userID, kind).
		Pluck("target_id", &ids).Error
	return ids, err
}

func (s *reactionRepoImpl) CountGroupByPost(ctx context.Context, targetType string, postID uint64, kind string) (map[uint64]int64, error) {
	var rows []targetCount
	err := conn(ctx, s.db).Model(&model.Reaction{}).
		Select("target_id, COUNT(*) AS total").
		Where("target_type = ? AND post_id = ? AND kind = ?", targetType, postID, kind).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "aggregate reactions by post")
	}
	return toCountMap(rows), nil
}

func (s *reactionRepoImpl) CountGroupByTargets(ctx context.Context, targetType string, targetIDs []uint64, kind string) (map[uint64]int64, error) {
	if len(targetIDs) == 0 {
		return map[uint64]int64{}, nil
	}
	var rows []targetCount
	err := conn(ctx, s.db).Model(&model.Reaction{}).
		Select("target_id, COUNT(*) AS total").
		Where("target_type = ? AND target_id IN ? AND kind = ?", targetType, targetIDs, kind).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "aggregate reactions by targets")
	}
	return toCountMap(rows), nil
}

func (s *reactionRepoImpl) CountByTarget(ctx context.Context, targetType string, targetID uint64, kind string) (int64, error) {
	var count int64
	err := conn(ctx, s.db).Model(&model.Reaction{}).
		Where("target_type = ? AND target_id = ? AND kind = ?", targetType, targetID, kind).
		Count(&count).Error
	return count, err
}

func toCountMap(rows []targetCount) map[uint64]int64 {
	counts := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		counts[row.TargetID] = row.Total
	}
	return counts
}
