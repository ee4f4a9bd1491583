package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

// Config — конфигурация приложения. Собирается один раз при старте
// и передаётся компонентам явно.
type Config struct {
	Log       *LogCfg
	Minio     *MinIOCfg
	Http      *HTTPConfig
	Grpc      *GRPCConfig
	Db        *PGDBCfg
	Redis     *RedisCfg
	Kafka     *KafkaCfg
	Otel      *OtelCfg
	Inventory *InventoryCfg
}

type LogCfg struct {
	Level       string
	Development bool
}

type KafkaCfg struct {
	Enabled           bool
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	BatchSize         int
	PollInterval      time.Duration // страховочный опрос outbox, если NOTIFY потерялся
	StaleAfter        time.Duration // через сколько зависшее в processing событие возвращается в очередь
}

type MinIOCfg struct {
	Enabled           bool
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для выгрузок журнала
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	SwaggerHost  string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns      int32
	MigrationsURL string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type OtelCfg struct {
	Endpoint       string // пусто — трассировка выключена
	AuthHeader     string
	ServiceName    string
	ServiceVersion string
	Insecure       bool // OTLP без TLS, для локального коллектора
}

// InventoryCfg — параметры предметной области.
type InventoryCfg struct {
	DefaultLimit      int
	MaxLimit          int
	LowStockThreshold int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Если рядом лежит .env, переменные из него подхватываются до чтения окружения.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	logCfg, err := loadLogCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	inventory, err := loadInventoryCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	otelCfg, err := loadOtelCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Log:       logCfg,
		Minio:     minio,
		Http:      http,
		Grpc:      loadGRPCConfig(),
		Db:        db,
		Redis:     redis,
		Kafka:     kafka,
		Otel:      otelCfg,
		Inventory: inventory,
	}, nil
}

func loadLogCfg() (*LogCfg, error) {
	const (
		defaultLevel       = "info"
		defaultDevelopment = false
	)

	dev, err := strconv.ParseBool(getEnvOrDefault("LOG_DEVELOPMENT", strconv.FormatBool(defaultDevelopment)))
	if err != nil {
		return nil, e.Wrap("LOG_DEVELOPMENT", e.ErrIncorrectEnvVariable)
	}

	return &LogCfg{
		Level:       getEnvOrDefault("LOG_LEVEL", defaultLevel),
		Development: dev,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "inventory.ledger"
		defaultBatchSize         = 10
		defaultPollInterval      = 10 * time.Second
		defaultStaleAfter        = 2 * time.Minute
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return &KafkaCfg{Enabled: false}, nil
	}

	brokers := strings.Split(brokerStr, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	batchSize, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", err)
	}

	pollInterval, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return nil, e.Wrap("OUTBOX_POLL_INTERVAL", err)
	}

	staleAfter, err := parseDurationEnv("OUTBOX_STALE_AFTER", defaultStaleAfter)
	if err != nil {
		return nil, e.Wrap("OUTBOX_STALE_AFTER", err)
	}

	return &KafkaCfg{
		Enabled:           true,
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		BatchSize:         batchSize,
		PollInterval:      pollInterval,
		StaleAfter:        staleAfter,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL = false
		defaultBucket = "inventory-ledger"
	)

	endpoint := getEnv("MINIO_ENDPOINT")
	if endpoint == "" {
		return &MinIOCfg{Enabled: false}, nil
	}

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		Enabled:           true,
		MinioEndpoint:     endpoint,
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultSwaggerHost  = "localhost:8080"
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		SwaggerHost:  getEnvOrDefault("SWAGGER_HOST", defaultSwaggerHost),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost          = "localhost"
		defaultPort          = "5432"
		defaultSSLMode       = "disable"
		defaultMaxConns      = 10
		defaultMigrationsURL = "file://db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", defaultMaxConns)
	if err != nil {
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, err
	}

	return &PGDBCfg{
		Host:          getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:          getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:          user,
		Password:      password,
		DBName:        dbName,
		SSLMode:       getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns:      int32(maxConns),
		MigrationsURL: getEnvOrDefault("MIGRATIONS_URL", defaultMigrationsURL),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
	}, nil
}

func loadOtelCfg() (*OtelCfg, error) {
	const (
		defaultServiceName    = "inventory-backend"
		defaultServiceVersion = "0.1.0"
		defaultInsecure       = false
	)

	insecure, err := strconv.ParseBool(getEnvOrDefault("OTEL_INSECURE", strconv.FormatBool(defaultInsecure)))
	if err != nil {
		return nil, e.Wrap("OTEL_INSECURE", e.ErrIncorrectEnvVariable)
	}

	return &OtelCfg{
		Endpoint:       getEnv("OTEL_ENDPOINT"),
		AuthHeader:     getEnv("OTEL_AUTH_HEADER"),
		ServiceName:    getEnvOrDefault("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion: getEnvOrDefault("OTEL_SERVICE_VERSION", defaultServiceVersion),
		Insecure:       insecure,
	}, nil
}

func loadInventoryCfg() (*InventoryCfg, error) {
	const (
		defaultLimit             = 100
		maxLimit                 = 1000
		defaultLowStockThreshold = 10
	)

	limit, err := parseIntEnv("PAGINATION_DEFAULT_LIMIT", defaultLimit)
	if err != nil {
		return nil, e.Wrap("PAGINATION_DEFAULT_LIMIT", err)
	}
	if limit < 1 || limit > maxLimit {
		return nil, e.Wrap("PAGINATION_DEFAULT_LIMIT", e.ErrIncorrectEnvVariable)
	}

	threshold, err := parseIntEnv("LOW_STOCK_THRESHOLD", defaultLowStockThreshold)
	if err != nil {
		return nil, e.Wrap("LOW_STOCK_THRESHOLD", err)
	}
	if threshold < 0 {
		return nil, e.Wrap("LOW_STOCK_THRESHOLD", e.ErrIncorrectEnvVariable)
	}

	return &InventoryCfg{
		DefaultLimit:      limit,
		MaxLimit:          maxLimit,
		LowStockThreshold: threshold,
	}, nil
}

// DSN собирает строку подключения к PostgreSQL.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
