package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Invoice.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Invoice.InitialBackoff)
	assert.Equal(t, 0.5, cfg.Invoice.BreakerFailureRatio)
	assert.Equal(t, 1, cfg.Delivery.InvoiceConcurrency)
	assert.Empty(t, cfg.Jobs.SummaryCron)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("INVOICE_BASE_URL", "http://invoices.local/")
	t.Setenv("INVOICE_MAX_RETRIES", "5")
	t.Setenv("DELIVERY_INVOICE_CONCURRENCY", "4")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "http://invoices.local", cfg.Invoice.BaseURL)
	assert.Equal(t, 5, cfg.Invoice.MaxRetries)
	assert.Equal(t, 4, cfg.Delivery.InvoiceConcurrency)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("db_driver: memory\nlog_level: debug\ninvoice_timeout: 750ms\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Invoice.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "DB_DRIVER", "oracle"},
		{"bad duration", "INVOICE_TIMEOUT", "soon"},
		{"negative retries", "INVOICE_MAX_RETRIES", "-1"},
		{"ratio above one", "INVOICE_BREAKER_FAILURE_RATIO", "1.5"},
		{"zero concurrency", "DELIVERY_INVOICE_CONCURRENCY", "0"},
		{"negative breaker min requests", "INVOICE_BREAKER_MIN_REQUESTS", "-1"},
		{"zero half-open requests", "INVOICE_BREAKER_HALF_OPEN_REQUESTS", "0"},
		{"negative half-open requests", "INVOICE_BREAKER_HALF_OPEN_REQUESTS", "-3"},
		{"unknown timezone", "DELIVERY_SUMMARY_TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
