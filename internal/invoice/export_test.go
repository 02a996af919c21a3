package invoice

import (
	"time"

	"tracker/internal/config"
)

func configForTest() config.InvoiceConfig {
	return config.InvoiceConfig{
		BaseURL:                "http://invoices",
		Timeout:                time.Second,
		MaxRetries:             4,
		InitialBackoff:         10 * time.Millisecond,
		MaxBackoff:             100 * time.Millisecond,
		BreakerFailureRatio:    0.6,
		BreakerMinRequests:     10,
		BreakerInterval:        time.Minute,
		BreakerOpenTimeout:     30 * time.Second,
		BreakerHalfOpenMaxReqs: 2,
	}
}
