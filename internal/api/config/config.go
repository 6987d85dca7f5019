package config

// Config 配置主体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Elastic    ElasticConfig    `mapstructure:"elastic"`
	Logstash   LogstashConfig   `mapstructure:"logstash"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Engagement EngagementConfig `mapstructure:"engagement"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// KafkaConfig Enable 为 false 时互动事件直接写入 Redis 脏集合
type KafkaConfig struct {
	Enable            bool           `mapstructure:"enable"`
	Brokers           []string       `mapstructure:"brokers"`
	Sasl              SaslConfig     `mapstructure:"sasl"`
	Consumer          ConsumerConfig `mapstructure:"consumer"`
	EngagementTopic   string         `mapstructure:"engagement_topic"`
	EngagementGroupID string         `mapstructure:"engagement_group_id"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// ElasticConfig Enable 为 false 时关键字检索使用数据库模糊匹配
type ElasticConfig struct {
	Enable    bool     `mapstructure:"enable"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	PostIndex string   `mapstructure:"post_index"`
}

// LogstashConfig 远程日志，Address 为空时只输出到 stdout
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// EngagementConfig 互动计数相关
type EngagementConfig struct {
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	SlugMaxAttempts int    `mapstructure:"slug_max_attempts"`
	ReconcileCron   string `mapstructure:"reconcile_cron"`
}
