package jobs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// JobManager owns the scheduled jobs enabled by configuration.
type JobManager struct {
	summaryJob *SummaryJob
	logger     *zap.Logger
}

// NewJobManager leaves the summary job disabled when summaryCron is empty.
func NewJobManager(provider SummaryProvider, summaryCron string, location *time.Location, logger *zap.Logger) *JobManager {
	jm := &JobManager{logger: logger}
	if summaryCron != "" {
		jm.summaryJob = NewSummaryJob(provider, summaryCron, location, logger)
	}
	return jm
}

func (jm *JobManager) StartAll() error {
	if jm.summaryJob == nil {
		jm.logger.Info("no scheduled jobs enabled")
		return nil
	}
	if err := jm.summaryJob.Start(); err != nil {
		return fmt.Errorf("failed to start summary job: %w", err)
	}
	return nil
}

func (jm *JobManager) StopAll() {
	if jm.summaryJob != nil {
		jm.summaryJob.Stop()
	}
}
