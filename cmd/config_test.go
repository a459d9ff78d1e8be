package cmd_test

import (
	"testing"
	"time"

	"grabbit/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := cmd.LoadConfig(t.Context())

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, cmd.StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, time.Hour, cfg.Orders.DefaultTTL)
	assert.Equal(t, "@every 5s", cfg.Jobs.ExpirySweepSchedule)
	assert.Equal(t, 100, cfg.Jobs.OutboxRelayBatch)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ORDER_DEFAULT_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := cmd.LoadConfig(t.Context())

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, cmd.StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.Orders.DefaultTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("unknown storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := cmd.LoadConfig(t.Context())
		require.Error(t, err)
	})

	t.Run("default ttl above maximum", func(t *testing.T) {
		t.Setenv("ORDER_DEFAULT_TTL", "240h")
		_, err := cmd.LoadConfig(t.Context())
		require.Error(t, err)
	})

	t.Run("default ttl below minimum", func(t *testing.T) {
		t.Setenv("ORDER_DEFAULT_TTL", "500ms")
		_, err := cmd.LoadConfig(t.Context())
		require.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("STORE_TIMEOUT", "soon")
		_, err := cmd.LoadConfig(t.Context())
		require.Error(t, err)
	})
}
