package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/jobs"
)

type fakePurger struct {
	before time.Time
	calls  int
	err    error
}

func (f *fakePurger) PurgeTrashed(ctx context.Context, before time.Time) (int64, error) {
	f.calls++
	f.before = before
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestPurgeJob_Run(t *testing.T) {
	purger := &fakePurger{}
	job := jobs.NewPurgeJob(purger, zap.NewNop(), 30, time.Minute)

	job.Run()

	require.Equal(t, 1, purger.calls)
	wantCutoff := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, wantCutoff, purger.before, time.Minute)
}

func TestPurgeJob_RunSwallowsErrors(t *testing.T) {
	purger := &fakePurger{err: errors.New("connection refused")}
	job := jobs.NewPurgeJob(purger, zap.NewNop(), 30, time.Minute)

	assert.NotPanics(t, job.Run)
	assert.Equal(t, 1, purger.calls)
}
