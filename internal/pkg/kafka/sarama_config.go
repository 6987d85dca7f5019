package kafka

import (
	"DevNest/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

// newSaramaConfig 统一初始化消费者使用的 sarama.Config
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	applySasl(c, kafkaCfg.Sasl)

	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetNewest

	c.Consumer.Group.Session.Timeout = seconds(kafkaCfg.Consumer.SessionTimeout, c.Consumer.Group.Session.Timeout)
	c.Consumer.Group.Heartbeat.Interval = seconds(kafkaCfg.Consumer.HeartbeatInterval, c.Consumer.Group.Heartbeat.Interval)
	c.Consumer.Group.Rebalance.Timeout = seconds(kafkaCfg.Consumer.RebalanceTimeout, c.Consumer.Group.Rebalance.Timeout)
	c.Consumer.Offsets.AutoCommit.Enable = true
	c.Consumer.MaxProcessingTime = seconds(kafkaCfg.Consumer.MaxProcessingTime, c.Consumer.MaxProcessingTime)

	return c
}

// newProducerConfig SyncProducer 需要 Return.Successes
func newProducerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	applySasl(c, kafkaCfg.Sasl)

	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Retry.Max = 3
	c.Producer.Return.Successes = true
	c.Producer.Partitioner = sarama.NewHashPartitioner
	return c
}

func applySasl(c *sarama.Config, sasl config.SaslConfig) {
	if !sasl.Enable {
		return
	}
	c.Net.SASL.Enable = true
	c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	c.Net.SASL.User = sasl.Username
	c.Net.SASL.Password = sasl.Password
}

func seconds(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}
