package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量 DEVNEST_* 可覆盖文件中的值
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("devnest")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// setDefaults 为每个键登记默认值，未登记的键在没有配置文件时读不到环境变量
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.sasl.enable", false)
	v.SetDefault("kafka.sasl.username", "")
	v.SetDefault("kafka.sasl.password", "")
	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 5)
	v.SetDefault("kafka.engagement_topic", "devnest-engagement")
	v.SetDefault("kafka.engagement_group_id", "devnest-engagement-reconciler")

	v.SetDefault("elastic.enable", false)
	v.SetDefault("elastic.addresses", []string{})
	v.SetDefault("elastic.username", "")
	v.SetDefault("elastic.password", "")
	v.SetDefault("elastic.post_index", "devnest-posts")

	v.SetDefault("logstash.address", "")
	v.SetDefault("logstash.index", "logstash-devnest")
	v.SetDefault("logstash.token", "")

	v.SetDefault("jwt.secret", "")

	v.SetDefault("engagement.cache_ttl_seconds", 3600)
	v.SetDefault("engagement.slug_max_attempts", 0)
	v.SetDefault("engagement.reconcile_cron", "0 */5 * * * *")
}
