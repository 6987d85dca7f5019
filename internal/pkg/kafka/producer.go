package kafka

import (
	"DevNest/internal/api/config"
	"DevNest/internal/model"
	"DevNest/internal/pkg/logger"
	"context"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// EngagementProducer 以帖子 ID 为 key 投递互动事件，保证同一帖子的事件有序
type EngagementProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEngagementProducer(cfg config.KafkaConfig) (*EngagementProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, newProducerConfig(cfg))
	if err != nil {
		return nil, err
	}
	return NewEngagementProducerWith(producer, cfg.EngagementTopic), nil
}

func NewEngagementProducerWith(producer sarama.SyncProducer, topic string) *EngagementProducer {
	return &EngagementProducer{producer: producer, topic: topic}
}

func (p *EngagementProducer) Notify(ctx context.Context, event *model.EngagementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(event.PostID, 10)),
		Value: sarama.ByteEncoder(payload),
	}
	if traceID := logger.TraceID(ctx); traceID != "" {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(logger.TraceIDKey), Value: []byte(traceID)})
	}
	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *EngagementProducer) Close() error {
	return p.producer.Close()
}
