package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"grabbit/internal/core/domain/model/order"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTPPort      string        `env:"HTTP_PORT,      default=8080"`
	StorageDriver string        `env:"STORAGE_DRIVER, default=postgres"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT,  default=2s"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`

	DB     DBConfig
	Orders OrdersConfig
	Jobs   JobsConfig
	Kafka  KafkaConfig
	Redis  RedisConfig
}

type DBConfig struct {
	Host     string `env:"DB_HOST,     default=localhost"`
	Port     string `env:"DB_PORT,     default=5432"`
	User     string `env:"DB_USER,     default=postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME,     default=grabbit"`
	SslMode  string `env:"DB_SSLMODE,  default=disable"`
}

type OrdersConfig struct {
	DefaultTTL time.Duration `env:"ORDER_DEFAULT_TTL, default=1h"`
}

type JobsConfig struct {
	ExpirySweepSchedule string `env:"EXPIRY_SWEEP_SCHEDULE, default=@every 5s"`
	ExpirySweepBatch    int    `env:"EXPIRY_SWEEP_BATCH,    default=100"`
	OutboxRelaySchedule string `env:"OUTBOX_RELAY_SCHEDULE, default=@every 1s"`
	OutboxRelayBatch    int    `env:"OUTBOX_RELAY_BATCH,    default=100"`
}

// KafkaConfig leaves Brokers empty by default, which selects the logging
// publisher.
type KafkaConfig struct {
	Brokers          []string `env:"KAFKA_BROKERS"`
	OrderEventsTopic string   `env:"KAFKA_ORDER_EVENTS_TOPIC, default=grabbit.order-events"`
}

// RedisConfig leaves Addr empty by default, which disables idempotency keys.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(ctx context.Context) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.StorageDriver)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.Orders.DefaultTTL < order.MinTTL || c.Orders.DefaultTTL > order.MaxTTL {
		return fmt.Errorf("ORDER_DEFAULT_TTL must be within [%s, %s], got %s", order.MinTTL, order.MaxTTL, c.Orders.DefaultTTL)
	}
	return nil
}
