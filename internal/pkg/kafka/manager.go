package kafka

import (
	"DevNest/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	engagementConsumer sarama.ConsumerGroup
	engagementHandler  sarama.ConsumerGroupHandler
	engagementTopic    string
}

func NewConsumerManager(cfg config.KafkaConfig) (*ConsumerManager, error) {
	consumer, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.EngagementGroupID, newSaramaConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &ConsumerManager{
		engagementConsumer: consumer,
		engagementHandler:  NewEngagementHandler(),
		engagementTopic:    cfg.EngagementTopic,
	}, nil
}

// Start 启动消费循环，ctx 取消后退出
func (m *ConsumerManager) Start(ctx context.Context) {
	go func() {
		for err := range m.engagementConsumer.Errors() {
			log.Error("engagement consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("Engagement consumer started", "topic", m.engagementTopic)
		for {
			if err := m.engagementConsumer.Consume(ctx, []string{m.engagementTopic}, m.engagementHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
}

func (m *ConsumerManager) Close() error {
	log.Info("Closing kafka consumers")
	return m.engagementConsumer.Close()
}
