package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tracker/internal/domain"
)

type SummaryProvider interface {
	BusinessSummary(ctx context.Context, day time.Time) (*domain.BusinessSummary, error)
}

// SummaryJob logs the previous day's business summary on a cron schedule.
type SummaryJob struct {
	provider SummaryProvider
	spec     string
	location *time.Location
	cron     *cron.Cron
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewSummaryJob(provider SummaryProvider, spec string, location *time.Location, logger *zap.Logger) *SummaryJob {
	if location == nil {
		location = time.UTC
	}
	return &SummaryJob{
		provider: provider,
		spec:     spec,
		location: location,
		cron:     cron.New(cron.WithLocation(location)),
		timeout:  30 * time.Second,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "summary_job")),
	}
}

func (j *SummaryJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.runScheduled); err != nil {
		return fmt.Errorf("scheduling summary job %q: %w", j.spec, err)
	}

	j.cron.Start()
	j.logger.Info("summary job started", zap.String("schedule", j.spec), zap.String("timezone", j.location.String()))
	return nil
}

// Stop waits for a running summary to finish.
func (j *SummaryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("summary job stopped")
}

func (j *SummaryJob) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.Run(ctx); err != nil {
		j.logger.Error("summary job failed", zap.Error(err))
	}
}

// Run computes and logs the summary for yesterday in the job's time zone.
func (j *SummaryJob) Run(ctx context.Context) (*domain.BusinessSummary, error) {
	day := j.now().In(j.location).AddDate(0, 0, -1)

	summary, err := j.provider.BusinessSummary(ctx, day)
	if err != nil {
		return nil, err
	}

	j.logger.Info("daily business summary",
		zap.String("date", day.Format(time.DateOnly)),
		zap.Int64("deliveries", summary.Deliveries),
		zap.Int64("averageMinutesBetweenDeliveryStart", summary.AverageMinutesBetweenDeliveryStart),
	)
	return summary, nil
}
