package expiry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type countingExpirer struct {
	calls atomic.Int32
	err   error
	last  atomic.Value
}

func (e *countingExpirer) ExpireStale(_ context.Context, now time.Time) (int, error) {
	e.calls.Add(1)
	e.last.Store(now)
	if e.err != nil {
		return 0, e.err
	}
	return 2, nil
}

func TestJob_Run(t *testing.T) {
	expirer := &countingExpirer{}
	job, err := NewJob(expirer, "", nopLogger{})
	require.NoError(t, err)

	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	assert.Equal(t, 2, job.Run(context.Background()))
	assert.Equal(t, int32(1), expirer.calls.Load())
	assert.Equal(t, fixed, expirer.last.Load())
}

func TestJob_RunError(t *testing.T) {
	expirer := &countingExpirer{err: errors.New("db down")}
	job, err := NewJob(expirer, "@every 1h", nopLogger{})
	require.NoError(t, err)

	assert.Equal(t, 0, job.Run(context.Background()))
}

func TestJob_InvalidSchedule(t *testing.T) {
	_, err := NewJob(&countingExpirer{}, "every minute please", nopLogger{})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestJob_StartStop(t *testing.T) {
	expirer := &countingExpirer{}
	job, err := NewJob(expirer, "@every 1s", nopLogger{})
	require.NoError(t, err)

	job.Start()
	assert.Eventually(t, func() bool {
		return expirer.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job.Stop(ctx)
}
