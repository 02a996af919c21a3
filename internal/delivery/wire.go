package delivery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tracker/internal/config"
	"tracker/internal/delivery/controller"
	"tracker/internal/delivery/repository"
	"tracker/internal/delivery/service"
	"tracker/internal/infrastructure/metrics"
	"tracker/internal/infrastructure/mysql"
	"tracker/internal/infrastructure/postgres"
)

type Module struct {
	Controller *controller.DeliveryController
	Service    *service.DeliveryService
}

func NewModule(
	repo service.DeliveryRepository,
	invoices service.InvoiceClient,
	m *metrics.Metrics,
	cfg config.DeliveryConfig,
	logger *zap.Logger,
) (*Module, error) {
	loc, err := time.LoadLocation(cfg.SummaryTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading summary timezone: %w", err)
	}

	svc := service.NewDeliveryService(
		repo,
		invoices,
		m,
		logger.With(zap.String("component", "delivery_service")),
		cfg.InvoiceConcurrency,
		loc,
	)

	return &Module{
		Controller: controller.NewDeliveryController(svc, logger.With(zap.String("component", "delivery_controller")), loc),
		Service:    svc,
	}, nil
}

// NewRepository opens the configured store and applies its schema. The
// returned close func releases the underlying connection pool.
func NewRepository(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (service.DeliveryRepository, func() error, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := mysql.NewConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := mysql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("database connected", zap.String("driver", cfg.Driver), zap.String("host", cfg.Host))
		return repository.NewMySQLDeliveryRepository(db), db.Close, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.DSN(cfg), cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("database connected", zap.String("driver", cfg.Driver), zap.String("host", cfg.Host))
		return repository.NewPostgresDeliveryRepository(db), db.Close, nil

	case config.DriverMemory:
		logger.Warn("using in-memory delivery store, data is lost on restart")
		return repository.NewMemoryDeliveryRepository(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
