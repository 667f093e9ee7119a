package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "PAYMENTS_"

type Config struct {
	Primary     Primary           `koanf:"primary"`
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Gateway     GatewayConfig     `koanf:"gateway"`
	Retry       RetryConfig       `koanf:"retry"`
	Breaker     BreakerConfig     `koanf:"breaker"`
	Processing  ProcessingConfig  `koanf:"processing"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Redis       RedisConfig       `koanf:"redis"`
	Kafka       KafkaConfig       `koanf:"kafka"`
	Metrics     MetricsConfig     `koanf:"metrics"`
	Logger      LoggerConfig      `koanf:"logger"`
	Worker      WorkerConfig      `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type GatewayConfig struct {
	BaseURL    string        `koanf:"base_url" validate:"required,url"`
	APIKey     string        `koanf:"api_key" validate:"required"`
	MerchantID string        `koanf:"merchant_id" validate:"required"`
	Timeout    time.Duration `koanf:"timeout" validate:"required"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int           `koanf:"max_retries"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"min=0,max=1"`
}

// ProcessingConfig bounds the retry of status updates that lose an
// optimistic concurrency race.
type ProcessingConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	Backoff     time.Duration `koanf:"backoff"`
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type IdempotencyConfig struct {
	Backend string        `koanf:"backend" validate:"required,oneof=memory redis postgres"`
	TTL     time.Duration `koanf:"ttl"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type KafkaConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Brokers        []string `koanf:"brokers"`
	OrderTopic     string   `koanf:"order_topic"`
	FinancialTopic string   `koanf:"financial_topic"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type WorkerConfig struct {
	Interval   time.Duration `koanf:"interval" validate:"required"`
	BatchSize  int           `koanf:"batch_size" validate:"required"`
	StaleAfter time.Duration `koanf:"stale_after" validate:"required"`
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := defaults()

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	if err := mainConfig.validateDependencies(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func defaults() *Config {
	return &Config{
		Retry:       RetryConfig{BaseDelay: 200 * time.Millisecond, MaxRetries: 3},
		Breaker:     BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: 30 * time.Second, MinRequests: 5, FailureRatio: 0.6},
		Processing:  ProcessingConfig{MaxAttempts: 3, Backoff: 50 * time.Millisecond},
		Idempotency: IdempotencyConfig{Backend: BackendPostgres, TTL: 24 * time.Hour},
		Kafka:       KafkaConfig{OrderTopic: "order-notifications", FinancialTopic: "financial-notifications"},
		Metrics:     MetricsConfig{Addr: ":9090"},
		Logger:      LoggerConfig{Level: "info", Format: "json"},
	}
}

// validateDependencies checks settings that are only required when another
// setting enables them.
func (c *Config) validateDependencies() error {
	var errs []error
	if c.Idempotency.Backend == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when idempotency.backend is redis"))
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
		}
		if c.Kafka.OrderTopic == "" || c.Kafka.FinancialTopic == "" {
			errs = append(errs, fmt.Errorf("kafka topics must be set, got order=%q financial=%q",
				c.Kafka.OrderTopic, c.Kafka.FinancialTopic))
		}
	}
	return errors.Join(errs...)
}
