package config

// Config 配置主体
type Config struct {
	Server            ServerConfig      `mapstructure:"server"`
	DB                DBConfig          `mapstructure:"database"`
	Redis             RedisConfig       `mapstructure:"redis"`
	Mongo             MongoConfig       `mapstructure:"mongo"`
	JWT               JWTConfig         `mapstructure:"jwt"`
	IM                IMConfig          `mapstructure:"im"`
	Logstash          LogstashConfig    `mapstructure:"logstash"`
	Kafka             KafkaConfig       `mapstructure:"kafka"`
	KafkaTeamConsumer KafkaTeamConsumer `mapstructure:"kafka_team_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"` // 为空时不限制来源
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	ExpireHour int    `mapstructure:"expire_hour"`
}

// IMConfig 即时通讯相关配置
type IMConfig struct {
	// Transport 推送通道: "redis" 跨实例广播, "local" 单实例直推
	Transport        string `mapstructure:"transport"`
	PushTimeout      int    `mapstructure:"push_timeout"`       // 毫秒
	StoreTimeout     int    `mapstructure:"store_timeout"`      // 毫秒
	AppendRetries    int    `mapstructure:"append_retries"`     // 群聊追加乐观锁重试次数
	ReconcileSpec    string `mapstructure:"reconcile_spec"`     // 未读账本校准 cron 表达式
	ReconcileBatch   int    `mapstructure:"reconcile_batch"`    // 单次校准的脏数据条数
	SendBuffer       int    `mapstructure:"send_buffer"`        // 单连接写缓冲
	WriteWait        int    `mapstructure:"write_wait"`         // 秒
	PongWait         int    `mapstructure:"pong_wait"`          // 秒
	DisplayNameCache int    `mapstructure:"display_name_cache"` // 秒
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
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

// KafkaTeamConsumer 团队成员表 binlog 消费者
type KafkaTeamConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
