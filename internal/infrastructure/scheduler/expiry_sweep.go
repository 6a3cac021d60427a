package scheduler

import (
	"context"

	"go.uber.org/zap"

	appcatalog "github.com/sudharshini/backend/internal/application/catalog"
)

// ExpirySweepJobName identifies the expiry sweep in logs and RunNow
const ExpirySweepJobName = "expiry_sweep"

// ExpirySweeper is satisfied by appcatalog.ExpirySweepService
type ExpirySweeper interface {
	Sweep(ctx context.Context) (*appcatalog.ExpirySweepStats, error)
}

// ExpirySweepJob runs the near-expiry alert on a schedule
type ExpirySweepJob struct {
	sweeper ExpirySweeper
	logger  *zap.Logger
}

// NewExpirySweepJob creates a new ExpirySweepJob
func NewExpirySweepJob(sweeper ExpirySweeper, logger *zap.Logger) *ExpirySweepJob {
	return &ExpirySweepJob{sweeper: sweeper, logger: logger}
}

// Name implements Job
func (j *ExpirySweepJob) Name() string { return ExpirySweepJobName }

// Run implements Job
func (j *ExpirySweepJob) Run(ctx context.Context) error {
	stats, err := j.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("Expiry sweep finished",
		zap.Int("near_expiry", stats.NearExpiry),
		zap.Bool("alert_sent", stats.AlertSent),
	)
	return nil
}
