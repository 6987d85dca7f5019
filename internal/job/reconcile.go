package job

import (
	"DevNest/internal/pkg/consts"
	"DevNest/internal/pkg/logger"
	"DevNest/internal/pkg/redis"
	"DevNest/internal/pkg/util"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const reconcileLockTTL = 2 * time.Minute

// reconcileFunc 重算单个目标的计数
type reconcileFunc func(ctx context.Context, id uint64) error

// drainDirtySet 将脏集合改名为处理中集合后逐个重算，处理中集合在上次运行中断时会被续跑
func drainDirtySet(name, dirtyKey, lockKey string, fn reconcileFunc) {
	traceID := "job-" + name + "-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	locked, err := redis.TryLock(ctx, lockKey, traceID, reconcileLockTTL, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire reconcile lock error", "job", name, "err", err)
		return
	}
	if !locked {
		log.InfoContext(ctx, "reconcile already running elsewhere", "job", name)
		return
	}
	defer redis.UnLock(ctx, lockKey, traceID)

	processingKey := dirtyKey + consts.ProcessingSuffix
	pending, err := redis.Exists(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "check processing set error", "job", name, "err", err)
		return
	}
	if !pending {
		renamed, err := redis.Rename(ctx, dirtyKey, processingKey)
		if err != nil {
			log.ErrorContext(ctx, "rename dirty set error", "job", name, "err", err)
			return
		}
		if !renamed {
			return
		}
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get dirty set error", "job", name, "err", err)
		return
	}
	ids, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		log.ErrorContext(ctx, "convert dirty set to ids error", "job", name, "err", err)
		_ = redis.DeleteKey(ctx, processingKey)
		return
	}

	log.InfoContext(ctx, "start reconciling counters", "job", name, "count", len(ids))

	var failed []uint64
	for _, id := range ids {
		if err = fn(ctx, id); err != nil {
			log.ErrorContext(ctx, "reconcile counter error", "job", name, "id", id, "err", err)
			failed = append(failed, id)
		}
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete processing set error", "job", name, "err", err)
	}
	if len(failed) > 0 {
		if err = redis.MarkDirty(ctx, dirtyKey, failed...); err != nil {
			log.ErrorContext(ctx, "requeue failed ids error", "job", name, "err", err)
		}
	}

	log.InfoContext(ctx, "reconcile counters done",
		"job", name,
		"total_count", len(ids),
		"success_count", len(ids)-len(failed))
}
