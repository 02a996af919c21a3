package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Invoice  InvoiceConfig
	Delivery DeliveryConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// InvoiceConfig holds the invoicing collaborator endpoint and its resilience policy.
type InvoiceConfig struct {
	BaseURL                string
	Timeout                time.Duration
	MaxRetries             int
	InitialBackoff         time.Duration
	MaxBackoff             time.Duration
	BreakerFailureRatio    float64
	BreakerMinRequests     int
	BreakerInterval        time.Duration
	BreakerOpenTimeout     time.Duration
	BreakerHalfOpenMaxReqs int
}

type DeliveryConfig struct {
	InvoiceConcurrency int
	SummaryTimezone    string
}

type JobsConfig struct {
	// SummaryCron is a standard 5-field cron spec. Empty disables the job.
	SummaryCron string
}

// Load reads configuration from defaults, the optional YAML file at path and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "tracker")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "deliveries")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("INVOICE_BASE_URL", "http://localhost:8081")
	v.SetDefault("INVOICE_TIMEOUT", "5s")
	v.SetDefault("INVOICE_MAX_RETRIES", 3)
	v.SetDefault("INVOICE_INITIAL_BACKOFF", "200ms")
	v.SetDefault("INVOICE_MAX_BACKOFF", "2s")
	v.SetDefault("INVOICE_BREAKER_FAILURE_RATIO", 0.5)
	v.SetDefault("INVOICE_BREAKER_MIN_REQUESTS", 10)
	v.SetDefault("INVOICE_BREAKER_INTERVAL", "60s")
	v.SetDefault("INVOICE_BREAKER_OPEN_TIMEOUT", "30s")
	v.SetDefault("INVOICE_BREAKER_HALF_OPEN_REQUESTS", 3)
	v.SetDefault("DELIVERY_INVOICE_CONCURRENCY", 1)
	v.SetDefault("DELIVERY_SUMMARY_TIMEZONE", "Europe/Amsterdam")
	v.SetDefault("JOBS_SUMMARY_CRON", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	durations := map[string]*time.Duration{}
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Invoice: InvoiceConfig{
			BaseURL:                strings.TrimRight(v.GetString("INVOICE_BASE_URL"), "/"),
			MaxRetries:             v.GetInt("INVOICE_MAX_RETRIES"),
			BreakerFailureRatio:    v.GetFloat64("INVOICE_BREAKER_FAILURE_RATIO"),
			BreakerMinRequests:     v.GetInt("INVOICE_BREAKER_MIN_REQUESTS"),
			BreakerHalfOpenMaxReqs: v.GetInt("INVOICE_BREAKER_HALF_OPEN_REQUESTS"),
		},
		Delivery: DeliveryConfig{
			InvoiceConcurrency: v.GetInt("DELIVERY_INVOICE_CONCURRENCY"),
			SummaryTimezone:    v.GetString("DELIVERY_SUMMARY_TIMEZONE"),
		},
		Jobs: JobsConfig{
			SummaryCron: v.GetString("JOBS_SUMMARY_CRON"),
		},
	}

	durations["SERVER_READ_TIMEOUT"] = &cfg.Server.ReadTimeout
	durations["SERVER_WRITE_TIMEOUT"] = &cfg.Server.WriteTimeout
	durations["SERVER_IDLE_TIMEOUT"] = &cfg.Server.IdleTimeout
	durations["SERVER_SHUTDOWN_TIMEOUT"] = &cfg.Server.ShutdownTimeout
	durations["DB_CONN_MAX_LIFETIME"] = &cfg.Database.ConnMaxLifetime
	durations["INVOICE_TIMEOUT"] = &cfg.Invoice.Timeout
	durations["INVOICE_INITIAL_BACKOFF"] = &cfg.Invoice.InitialBackoff
	durations["INVOICE_MAX_BACKOFF"] = &cfg.Invoice.MaxBackoff
	durations["INVOICE_BREAKER_INTERVAL"] = &cfg.Invoice.BreakerInterval
	durations["INVOICE_BREAKER_OPEN_TIMEOUT"] = &cfg.Invoice.BreakerOpenTimeout

	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Invoice.BaseURL == "" {
		return fmt.Errorf("INVOICE_BASE_URL is required")
	}
	if c.Invoice.MaxRetries < 0 {
		return fmt.Errorf("INVOICE_MAX_RETRIES must not be negative")
	}
	if c.Invoice.BreakerFailureRatio <= 0 || c.Invoice.BreakerFailureRatio > 1 {
		return fmt.Errorf("INVOICE_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Invoice.BreakerMinRequests < 0 {
		return fmt.Errorf("INVOICE_BREAKER_MIN_REQUESTS must not be negative")
	}
	if c.Invoice.BreakerHalfOpenMaxReqs < 1 {
		return fmt.Errorf("INVOICE_BREAKER_HALF_OPEN_REQUESTS must be at least 1")
	}
	if c.Delivery.InvoiceConcurrency < 1 {
		return fmt.Errorf("DELIVERY_INVOICE_CONCURRENCY must be at least 1")
	}
	if _, err := time.LoadLocation(c.Delivery.SummaryTimezone); err != nil {
		return fmt.Errorf("DELIVERY_SUMMARY_TIMEZONE: %w", err)
	}

	return nil
}
