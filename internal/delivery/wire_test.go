package delivery

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracker/internal/config"
	"tracker/internal/delivery/repository"
	"tracker/internal/infrastructure/metrics"
)

func TestNewRepository_Memory(t *testing.T) {
	repo, closeFn, err := NewRepository(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryDeliveryRepository{}, repo)
	assert.NoError(t, closeFn())
}

func TestNewRepository_UnknownDriver(t *testing.T) {
	_, _, err := NewRepository(context.Background(), config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestNewModule(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	mod, err := NewModule(repository.NewMemoryDeliveryRepository(), nil, m, config.DeliveryConfig{
		InvoiceConcurrency: 2,
		SummaryTimezone:    "Europe/Amsterdam",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mod.Controller)
	assert.Equal(t, "Europe/Amsterdam", mod.Service.Location().String())

	_, err = NewModule(repository.NewMemoryDeliveryRepository(), nil, m, config.DeliveryConfig{
		InvoiceConcurrency: 1,
		SummaryTimezone:    "Mars/Olympus",
	}, zap.NewNop())
	assert.Error(t, err)
}
