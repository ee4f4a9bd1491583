package cfg

import (
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredDBEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "inventory")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "inventory")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MINIO_ENDPOINT", "")

	c, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, 5*time.Second, c.Http.ReadTimeout)
	assert.Equal(t, "8091", c.Grpc.Port)
	assert.Equal(t, "localhost", c.Db.Host)
	assert.Equal(t, 3*time.Minute, c.Redis.ProductTTL)
	assert.False(t, c.Kafka.Enabled)
	assert.False(t, c.Minio.Enabled)
	assert.Equal(t, 100, c.Inventory.DefaultLimit)
	assert.Equal(t, 1000, c.Inventory.MaxLimit)
	assert.Equal(t, 10, c.Inventory.LowStockThreshold)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_MissingPostgresUser(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("POSTGRES_USER", "")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_KafkaEnabled(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_TOPIC", "ledger")

	c, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "ledger", c.Kafka.Topic)
	assert.Equal(t, 3, c.Kafka.Partitions)
}

func TestLoad_InvalidDefaultLimit(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "5000")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrIncorrectEnvVariable))
}

func TestPGDBCfg_DSN(t *testing.T) {
	c := &PGDBCfg{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=inv sslmode=disable", c.DSN())
}
