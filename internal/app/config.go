package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
)

// Драйверы хранилища заказов.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverMySQL    = "mysql"
)

// UserStoreRedis выносит статистику пользователей в Redis.
const UserStoreRedis = "redis"

// Config описывает настройки запуска приложения. Загружается из переменных
// окружения (префикс OMS_), флагов и YAML-файлов.
type Config struct {
	GRPCAddr        string        `default:":50051" env:"GRPC_ADDR" flag:"grpc-addr" usage:"gRPC listen address"`
	MetricsAddr     string        `default:":9090" env:"METRICS_ADDR" flag:"metrics-addr" usage:"HTTP address for /metrics, /healthz, /livez, /version"`
	ShutdownTimeout time.Duration `default:"10s" env:"SHUTDOWN_TIMEOUT" flag:"shutdown-timeout" usage:"Maximum graceful shutdown duration"`
	LogLevel        string        `default:"info" env:"LOG_LEVEL" flag:"log-level" usage:"logrus level"`
	LogFormat       string        `default:"json" env:"LOG_FORMAT" flag:"log-format" usage:"json or text"`

	StorageDriver       string `default:"memory" env:"STORAGE_DRIVER" flag:"storage-driver" usage:"memory, postgres or mysql"`
	PostgresDSN         string `env:"POSTGRES_DSN" flag:"postgres-dsn" usage:"PostgreSQL DSN"`
	PostgresAutoMigrate bool   `default:"true" env:"POSTGRES_AUTO_MIGRATE" flag:"postgres-auto-migrate" usage:"Apply migrations on start"`
	MySQLDSN            string `env:"MYSQL_DSN" flag:"mysql-dsn" usage:"MySQL DSN"`
	MySQLAutoMigrate    bool   `default:"true" env:"MYSQL_AUTO_MIGRATE" flag:"mysql-auto-migrate" usage:"Apply schema on start"`

	UserStore     string `default:"" env:"USER_STORE" flag:"user-store" usage:"empty to keep users in the storage driver, or redis"`
	RedisAddr     string `default:"localhost:6379" env:"REDIS_ADDR" flag:"redis-addr" usage:"Redis address"`
	RedisPassword string `env:"REDIS_PASSWORD" flag:"redis-password" usage:"Redis password"`
	RedisDB       int    `default:"0" env:"REDIS_DB" flag:"redis-db" usage:"Redis database"`

	RewardsBaseURL             string        `env:"REWARDS_BASE_URL" flag:"rewards-base-url" usage:"Rewards provider base URL; empty selects the in-process mock"`
	RewardsAPIKey              string        `env:"REWARDS_API_KEY" flag:"rewards-api-key" usage:"Rewards provider bearer token"`
	RewardsCallTimeout         time.Duration `default:"2s" env:"REWARDS_CALL_TIMEOUT" flag:"rewards-call-timeout" usage:"Timeout of a single provider call"`
	RewardsBreakerThreshold    int           `default:"5" env:"REWARDS_BREAKER_THRESHOLD" flag:"rewards-breaker-threshold" usage:"Consecutive failures before the breaker opens"`
	RewardsBreakerCooldown     time.Duration `default:"30s" env:"REWARDS_BREAKER_COOLDOWN" flag:"rewards-breaker-cooldown" usage:"Open breaker cooldown"`
	RewardsMockDiscountPercent float64       `default:"0" env:"REWARDS_MOCK_DISCOUNT_PERCENT" flag:"rewards-mock-discount-percent" usage:"Discount percent of the mock gateway"`

	KafkaBrokers           []string `env:"KAFKA_BROKERS" flag:"kafka-brokers" usage:"Comma separated Kafka brokers; empty disables Kafka"`
	KafkaConsumerGroup     string   `default:"oms-loyalty-reconciler" env:"KAFKA_CONSUMER_GROUP" flag:"kafka-consumer-group" usage:"Consumer group of the loyalty reconciler"`
	KafkaReconcilerEnabled bool     `default:"true" env:"KAFKA_RECONCILER_ENABLED" flag:"kafka-reconciler-enabled" usage:"Consume outbox events to re-confirm loyalty"`

	OutboxPollInterval time.Duration `default:"1s" env:"OUTBOX_POLL_INTERVAL" flag:"outbox-poll-interval" usage:"Outbox worker poll interval"`
	OutboxBatchSize    int           `default:"100" env:"OUTBOX_BATCH_SIZE" flag:"outbox-batch-size" usage:"Outbox messages per poll"`
	OutboxMaxAttempts  int           `default:"3" env:"OUTBOX_MAX_ATTEMPTS" flag:"outbox-max-attempts" usage:"Publish attempts before DLQ"`
	OutboxRetryDelay   time.Duration `default:"200ms" env:"OUTBOX_RETRY_DELAY" flag:"outbox-retry-delay" usage:"Base publish retry delay"`
	OutboxMaxPending   int           `default:"10000" env:"OUTBOX_MAX_PENDING" flag:"outbox-max-pending" usage:"Pending backlog that marks the service degraded"`

	IdempotencyTTL              time.Duration `default:"24h" env:"IDEMPOTENCY_TTL" flag:"idempotency-ttl" usage:"Idempotency key lifetime"`
	IdempotencyCleanupInterval  time.Duration `default:"1m" env:"IDEMPOTENCY_CLEANUP_INTERVAL" flag:"idempotency-cleanup-interval" usage:"Expired keys cleanup interval"`
	IdempotencyCleanupBatchSize int           `default:"500" env:"IDEMPOTENCY_CLEANUP_BATCH_SIZE" flag:"idempotency-cleanup-batch-size" usage:"Expired keys deleted per batch"`
}

// DefaultConfig возвращает значения по умолчанию без чтения окружения и файлов.
func DefaultConfig() Config {
	cfg, err := load(aconfig.Config{SkipEnv: true, SkipFiles: true, SkipFlags: true})
	if err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// LoadConfig читает конфигурацию из OMS_* переменных, флагов args и файлов
// config.yaml, /etc/oms/config.yaml, затем валидирует её.
func LoadConfig(args []string) (Config, error) {
	if args == nil {
		args = []string{}
	}
	cfg, err := load(aconfig.Config{
		EnvPrefix: "OMS",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/oms/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(loaderCfg aconfig.Config) (Config, error) {
	var cfg Config
	loaderCfg.AllowUnknownFields = true
	loaderCfg.AllowUnknownEnvs = true
	if err := aconfig.LoaderFor(&cfg, loaderCfg).Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.UserStore = strings.ToLower(strings.TrimSpace(c.UserStore))
	brokers := c.KafkaBrokers[:0]
	for _, broker := range c.KafkaBrokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	c.KafkaBrokers = brokers
}

// KafkaEnabled сообщает, настроены ли брокеры.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Validate проверяет согласованность настроек. Возвращает все найденные проблемы.
func (c Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.GRPCAddr) == "" {
		add("grpc address is required")
	}
	if strings.TrimSpace(c.MetricsAddr) == "" {
		add("metrics address is required")
	}

	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			add("postgres dsn is required for storage driver %q", c.StorageDriver)
		}
	case StorageDriverMySQL:
		if strings.TrimSpace(c.MySQLDSN) == "" {
			add("mysql dsn is required for storage driver %q", c.StorageDriver)
		}
	default:
		add("unsupported storage driver %q", c.StorageDriver)
	}

	switch c.UserStore {
	case "":
	case UserStoreRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			add("redis address is required for user store %q", c.UserStore)
		}
	default:
		add("unsupported user store %q", c.UserStore)
	}

	if c.RewardsBaseURL != "" {
		if u, err := url.Parse(c.RewardsBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("rewards base url %q must be an absolute http(s) url", c.RewardsBaseURL)
		}
		if c.RewardsAPIKey == "" {
			add("rewards api key is required when rewards base url is set")
		}
	}
	if c.RewardsCallTimeout <= 0 {
		add("rewards call timeout must be positive")
	}
	if c.RewardsMockDiscountPercent < 0 || c.RewardsMockDiscountPercent > 100 {
		add("rewards mock discount percent must be within [0, 100]")
	}

	if c.OutboxPollInterval <= 0 || c.OutboxBatchSize <= 0 || c.OutboxMaxAttempts <= 0 || c.OutboxMaxPending <= 0 {
		add("outbox poll interval, batch size, max attempts and max pending must be positive")
	}
	if c.OutboxRetryDelay < 0 {
		add("outbox retry delay must not be negative")
	}
	if c.IdempotencyTTL <= 0 || c.IdempotencyCleanupInterval <= 0 || c.IdempotencyCleanupBatchSize <= 0 {
		add("idempotency ttl, cleanup interval and cleanup batch size must be positive")
	}

	return errors.Join(problems...)
}
