package service

import (
	"DevNest/internal/model"
	"DevNest/internal/pkg/redis"
	"DevNest/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ReactionTarget 表态对象；评论的 PostID 为其所属帖子
type ReactionTarget struct {
	Type   string
	ID     uint64
	PostID uint64
}

// ReactionResult Count 为表态后的计数，Views 仅对帖子有效
type ReactionResult struct {
	Count  int64
	Active bool
	Views  int64
}

// EngagementNotifier 计数变更后的旁路通知，失败不影响主流程
type EngagementNotifier interface {
	Notify(ctx context.Context, event *model.EngagementEvent) error
}

type EngagementService interface {
	// React 幂等：已存在的表态不重复计数
	React(ctx context.Context, target ReactionTarget, userID uint64, kind string) (*ReactionResult, error)
	// Unreact 幂等：不存在的表态直接返回当前计数
	Unreact(ctx context.Context, target ReactionTarget, userID uint64, kind string) (*ReactionResult, error)
	// RecordView 无条件累加浏览量
	RecordView(ctx context.Context, postID uint64) (*model.PostMetric, error)
	// ReconcilePostLikes 以表态记录重算帖子点赞数
	ReconcilePostLikes(ctx context.Context, postID uint64) error
	// ReconcileCommentLikes 以表态记录重算评论点赞数
	ReconcileCommentLikes(ctx context.Context, commentID uint64) error
}

type engagementServiceImpl struct {
	tx           repository.Transactor
	metricRepo   repository.PostMetricRepo
	commentRepo  repository.CommentRepo
	reactionRepo repository.ReactionRepo
	notifier     EngagementNotifier
	now          func() time.Time
}

func NewEngagementService(
	tx repository.Transactor,
	metricRepo repository.PostMetricRepo,
	commentRepo repository.CommentRepo,
	reactionRepo repository.ReactionRepo,
	notifier EngagementNotifier,
) EngagementService {
	return &engagementServiceImpl{
		tx:           tx,
		metricRepo:   metricRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *engagementServiceImpl) React(ctx context.Context, target ReactionTarget, userID uint64, kind string) (*ReactionResult, error) {
	now := s.now()
	result := &ReactionResult{Active: true}
	var changed bool

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if target.Type == model.TargetPost {
			if err := s.metricRepo.EnsureMetric(ctx, target.ID); err != nil {
				return err
			}
		}

		inserted, err := s.reactionRepo.InsertIfAbsent(ctx, &model.Reaction{
			TargetType: target.Type,
			TargetID:   target.ID,
			UserID:     userID,
			Kind:       kind,
			PostID:     target.PostID,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		changed = inserted

		if inserted {
			if err = s.incrCounter(ctx, target, now); err != nil {
				return err
			}
		}
		return s.readCounter(ctx, target, result)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterChange(ctx, target, userID, model.EventLike, now)
	}
	return result, nil
}

func (s *engagementServiceImpl) Unreact(ctx context.Context, target ReactionTarget, userID uint64, kind string) (*ReactionResult, error) {
	now := s.now()
	result := &ReactionResult{Active: false}
	var changed bool

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		deleted, err := s.reactionRepo.Delete(ctx, repository.ReactionKey{
			TargetType: target.Type,
			TargetID:   target.ID,
			UserID:     userID,
			Kind:       kind,
		})
		if err != nil {
			return err
		}
		changed = deleted

		if deleted {
			if err = s.decrCounter(ctx, target); err != nil {
				return err
			}
		}
		return s.readCounter(ctx, target, result)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterChange(ctx, target, userID, model.EventUnlike, now)
	}
	return result, nil
}

func (s *engagementServiceImpl) RecordView(ctx context.Context, postID uint64) (*model.PostMetric, error) {
	now := s.now()
	var metric *model.PostMetric

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.metricRepo.EnsureMetric(ctx, postID); err != nil {
			return err
		}
		if err := s.metricRepo.IncrViews(ctx, postID, now); err != nil {
			return errors.Wrap(err, "incr views")
		}
		m, err := s.metricRepo.GetMetric(ctx, postID)
		if err != nil {
			return err
		}
		metric = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if metric == nil {
		metric = &model.PostMetric{PostID: postID}
	}

	s.afterChange(ctx, ReactionTarget{Type: model.TargetPost, ID: postID, PostID: postID}, 0, model.EventView, now)
	return metric, nil
}

// ReconcilePostLikes 锁定快照行后计数并覆盖，与并发的 React/Unreact 串行
func (s *engagementServiceImpl) ReconcilePostLikes(ctx context.Context, postID uint64) error {
	var found bool
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		metric, err := s.metricRepo.LockMetric(ctx, postID)
		if err != nil {
			return err
		}
		if metric == nil {
			return nil
		}
		found = true

		count, err := s.reactionRepo.CountByTarget(ctx, model.TargetPost, postID, model.ReactionLike)
		if err != nil {
			return err
		}
		if count == metric.LikesCount {
			return nil
		}
		log.WarnContext(ctx, "post likes drift repaired", "post_id", postID, "stored", metric.LikesCount, "actual", count)
		return s.metricRepo.SetLikes(ctx, postID, count)
	})
	if err != nil || !found {
		return err
	}

	if err = redis.DeletePostCounters(ctx, postID); err != nil {
		log.WarnContext(ctx, "evict post counters error", "post_id", postID, "err", err)
	}
	return nil
}

func (s *engagementServiceImpl) ReconcileCommentLikes(ctx context.Context, commentID uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		stored, err := s.commentRepo.LockLikesCount(ctx, commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		count, err := s.reactionRepo.CountByTarget(ctx, model.TargetComment, commentID, model.ReactionLike)
		if err != nil {
			return err
		}
		if count == stored {
			return nil
		}
		log.WarnContext(ctx, "comment likes drift repaired", "comment_id", commentID, "stored", stored, "actual", count)
		return s.commentRepo.SetLikesCount(ctx, commentID, count)
	})
}

func (s *engagementServiceImpl) incrCounter(ctx context.Context, target ReactionTarget, now time.Time) error {
	switch target.Type {
	case model.TargetPost:
		return errors.Wrap(s.metricRepo.IncrLikes(ctx, target.ID, now), "incr post likes")
	case model.TargetComment:
		return errors.Wrap(s.commentRepo.IncrLikes(ctx, target.ID), "incr comment likes")
	default:
		return ErrParamInvalid
	}
}

func (s *engagementServiceImpl) decrCounter(ctx context.Context, target ReactionTarget) error {
	var (
		clamped bool
		err     error
	)
	switch target.Type {
	case model.TargetPost:
		clamped, err = s.metricRepo.DecrLikes(ctx, target.ID)
	case model.TargetComment:
		clamped, err = s.commentRepo.DecrLikes(ctx, target.ID)
	default:
		return ErrParamInvalid
	}
	if err != nil {
		return errors.Wrap(err, "decr likes")
	}
	if clamped {
		log.WarnContext(ctx, "likes counter already zero, decrement clamped",
			"target_type", target.Type, "target_id", target.ID)
	}
	return nil
}

func (s *engagementServiceImpl) readCounter(ctx context.Context, target ReactionTarget, result *ReactionResult) error {
	switch target.Type {
	case model.TargetPost:
		metric, err := s.metricRepo.GetMetric(ctx, target.ID)
		if err != nil {
			return err
		}
		if metric != nil {
			result.Count = metric.LikesCount
			result.Views = metric.ViewsCount
		}
		return nil
	case model.TargetComment:
		count, err := s.commentRepo.GetLikesCount(ctx, target.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		result.Count = count
		return nil
	default:
		return ErrParamInvalid
	}
}

// afterChange 事务提交后失效缓存并发出事件，均为尽力而为
func (s *engagementServiceImpl) afterChange(ctx context.Context, target ReactionTarget, userID uint64, eventType string, at time.Time) {
	if target.Type == model.TargetPost {
		if err := redis.DeletePostCounters(ctx, target.ID); err != nil {
			log.WarnContext(ctx, "evict post counters error", "post_id", target.ID, "err", err)
		}
	}
	if s.notifier == nil {
		return
	}
	event := &model.EngagementEvent{
		Type:       eventType,
		TargetType: target.Type,
		TargetID:   target.ID,
		PostID:     target.PostID,
		UserID:     userID,
		OccurredAt: at,
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.WarnContext(ctx, "notify engagement event error", "type", eventType, "target_id", target.ID, "err", err)
	}
}

type dirtySetNotifier struct{}

// NewDirtySetNotifier 未启用 Kafka 时直接写入 Redis 脏集合
func NewDirtySetNotifier() EngagementNotifier {
	return dirtySetNotifier{}
}

func (dirtySetNotifier) Notify(ctx context.Context, event *model.EngagementEvent) error {
	return redis.MarkEngagementDirty(ctx, event)
}
