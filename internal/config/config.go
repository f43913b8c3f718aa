package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/dakshrana205/StudyNotionnew/pkg/config"
	"github.com/dakshrana205/StudyNotionnew/pkg/database"
	"github.com/dakshrana205/StudyNotionnew/pkg/middleware"
	"github.com/dakshrana205/StudyNotionnew/pkg/tracing"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "studynotion"

// Config holds all configuration for the StudyNotion service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"4000"`

	// PostgreSQL
	PostgresHost       string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string `env:"POSTGRES_USER" envDefault:"studynotion"`
	PostgresPass       string `env:"POSTGRES_PASSWORD" envDefault:"studynotion_secret"`
	PostgresDB         string `env:"POSTGRES_DB" envDefault:"studynotion"`
	PostgresSSL        string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns         int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns         int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	SlowQueryThreshold int    `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RatingCacheTTL time.Duration `env:"RATING_CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Payment gateway
	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET,required,notEmpty"`
	GatewayBaseURL    string `env:"GATEWAY_BASE_URL" envDefault:"https://api.razorpay.com/v1"`
	GatewayMock       bool   `env:"GATEWAY_MOCK" envDefault:"false"`

	// Mail
	MailAPIKey    string `env:"MAIL_API_KEY"`
	MailFrom      string `env:"MAIL_FROM" envDefault:"noreply@studynotion.local"`
	MailFromName  string `env:"MAIL_FROM_NAME" envDefault:"StudyNotion"`
	MailBaseURL   string `env:"MAIL_BASE_URL" envDefault:"https://api.sendgrid.com"`
	MailMock      bool   `env:"MAIL_MOCK" envDefault:"false"`
	MailWorkers   int    `env:"MAIL_WORKERS" envDefault:"4"`
	MailQueueSize int    `env:"MAIL_QUEUE_SIZE" envDefault:"256"`

	// Auth and edge middleware
	JWTSecret          string   `env:"JWT_SECRET,required,notEmpty"`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// VerifyTimeout bounds the enrollment transaction of one verification.
	VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load studynotion config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MailWorkers < 1:
		return fmt.Errorf("MAIL_WORKERS must be at least 1, got %d", c.MailWorkers)
	case c.MailQueueSize < 1:
		return fmt.Errorf("MAIL_QUEUE_SIZE must be at least 1, got %d", c.MailQueueSize)
	case c.VerifyTimeout <= 0:
		return fmt.Errorf("VERIFY_TIMEOUT must be positive, got %s", c.VerifyTimeout)
	case !c.MailMock && c.MailAPIKey == "":
		return fmt.Errorf("MAIL_API_KEY is required unless MAIL_MOCK is set")
	case !c.GatewayMock && c.RazorpayKeyID == "":
		return fmt.Errorf("RAZORPAY_KEY_ID is required unless GATEWAY_MOCK is set")
	}
	return nil
}

// IsProduction reports whether stack traces must be withheld from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Redis returns the redis node configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{Host: c.RedisHost, Port: c.RedisPort, Password: c.RedisPassword, DB: c.RedisDB}
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:        c.OTelEnabled,
		ServiceName:    ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    c.Environment,
		Endpoint:       c.OTelEndpoint,
		SampleRate:     c.OTelSampleRate,
	}
}

// CORS returns the CORS middleware configuration.
func (c *Config) CORS() middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	cfg.AllowedOrigins = c.CORSAllowedOrigins
	cfg.Environment = c.Environment
	return cfg
}

// SlowQuery returns the slow query log threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryThreshold) * time.Millisecond
}
