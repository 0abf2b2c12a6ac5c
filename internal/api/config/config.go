package config

// Config 配置主体
type Config struct {
	Server              ServerConfig        `mapstructure:"server"`
	DB                  DBConfig            `mapstructure:"database"`
	Redis               RedisConfig         `mapstructure:"redis"`
	Mongo               MongoConfig         `mapstructure:"mongo"`
	JWT                 JWTConfig           `mapstructure:"jwt"`
	Log                 LogConfig           `mapstructure:"log"`
	Accounting          AccountingConfig    `mapstructure:"accounting"`
	Cache               CacheConfig         `mapstructure:"cache"`
	Kafka               KafkaConfig         `mapstructure:"kafka"`
	KafkaIngestConsumer KafkaIngestConsumer `mapstructure:"kafka_ingest_consumer"`
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

// MongoConfig 历史归档库
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig 为空时只输出到 stdout
type LogConfig struct {
	Level        string `mapstructure:"level"`
	LogstashAddr string `mapstructure:"logstash_addr"`
}

// AccountingConfig 记账日期，格式 YYYY-MM-DD
type AccountingConfig struct {
	RealtimeCutoff          string `mapstructure:"realtime_cutoff"`
	AccrualStartCutoff      string `mapstructure:"accrual_start_cutoff"`
	HistoricalArchiveEnd    string `mapstructure:"historical_archive_end"`
	AccrualLookbackDays     int    `mapstructure:"accrual_lookback_days"`
	WeeklyAlignment         string `mapstructure:"weekly_alignment"`
	FilterHashtagsInAccrual bool   `mapstructure:"filter_hashtags_in_accrual"`
	DefaultRangeDays        int    `mapstructure:"default_range_days"`
}

// CacheConfig 看板缓存
type CacheConfig struct {
	Enable bool `mapstructure:"enable"`
	// BumpSpec 检查脏集合并刷新缓存版本的 cron 表达式
	BumpSpec string `mapstructure:"bump_spec"`
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
}

// KafkaIngestConsumer 抓取数据表的 canal 变更
type KafkaIngestConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
