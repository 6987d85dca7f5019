package kafka

import (
	"DevNest/internal/model"
	"DevNest/internal/pkg/logger"
	"DevNest/internal/pkg/redis"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// EngagementHandler 消费互动事件，将受影响的计数登记到 Redis 脏集合等待对账
type EngagementHandler struct{}

func NewEngagementHandler() *EngagementHandler {
	return &EngagementHandler{}
}

func (s *EngagementHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("engagement consumer setup")
	return nil
}

func (s *EngagementHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("engagement consumer cleanup")
	return nil
}

func (s *EngagementHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("engagement consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	return pullMessageBatch(session, claim, s.logic)
}

// logic 无法解析的消息直接跳过，Redis 失败交给重试
func (s *EngagementHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event model.EngagementEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Warn("skip malformed engagement event", "offset", msg.Offset, "err", err)
		return nil
	}
	if event.TargetID == 0 {
		log.Warn("skip engagement event without target", "offset", msg.Offset)
		return nil
	}

	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == logger.TraceIDKey {
			ctx = logger.WithTraceID(ctx, string(h.Value))
			break
		}
	}
	return redis.MarkEngagementDirty(ctx, &event)
}
