package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PurgeJobName is the name of the trashed-lead purge job
const PurgeJobName = "purge_trashed_items"

// TrashedItemPurger removes soft-deleted pipeline items past their retention
// window. Implemented by the pipeline item repository.
type TrashedItemPurger interface {
	PurgeTrashed(ctx context.Context, before time.Time) (int64, error)
}

// PurgeJob permanently removes pipeline items that have sat in the trash
// longer than the configured retention.
type PurgeJob struct {
	purger        TrashedItemPurger
	logger        *zap.Logger
	retainForDays int
	timeout       time.Duration
}

// NewPurgeJob creates a new purge job. Items soft deleted more than
// retainForDays ago are removed on each run.
func NewPurgeJob(purger TrashedItemPurger, logger *zap.Logger, retainForDays int, timeout time.Duration) *PurgeJob {
	return &PurgeJob{
		purger:        purger,
		logger:        logger,
		retainForDays: retainForDays,
		timeout:       timeout,
	}
}

// Run executes the purge. This is called by the scheduler according to the
// cron expression.
func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	cutoff := start.AddDate(0, 0, -j.retainForDays)

	purged, err := j.purger.PurgeTrashed(ctx, cutoff)
	if err != nil {
		j.logger.Error("trashed item purge failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("trashed item purge completed",
		zap.Int64("items_purged", purged),
		zap.Time("cutoff", cutoff),
		zap.Duration("duration", time.Since(start)))
}
