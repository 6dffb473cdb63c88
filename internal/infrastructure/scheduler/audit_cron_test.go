package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/printchain/backend/internal/infrastructure/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRunner struct {
	calls   atomic.Int32
	repair  atomic.Bool
	err     error
	blockOn chan struct{}
}

func (f *fakeAuditRunner) RunScheduledAudit(ctx context.Context, repair bool) error {
	f.calls.Add(1)
	f.repair.Store(repair)
	if f.blockOn != nil {
		<-f.blockOn
	}
	return f.err
}

func TestNewAuditCron_InvalidSchedule(t *testing.T) {
	_, err := NewAuditCron(AuditCronConfig{Schedule: "every night"}, &fakeAuditRunner{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAuditCron_RunNow(t *testing.T) {
	q := startQueue(t, testQueueConfig())
	runner := &fakeAuditRunner{}
	ac, err := NewAuditCron(AuditCronConfig{Schedule: "0 2 * * *", Timezone: "UTC", Repair: true}, runner, q, lock.NewLocalLocker(), nil)
	require.NoError(t, err)

	require.NoError(t, ac.RunNow(context.Background()))
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.True(t, runner.repair.Load())

	// lock is released after the run
	require.NoError(t, ac.RunNow(context.Background()))
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestAuditCron_RunNowPropagatesFailure(t *testing.T) {
	runner := &fakeAuditRunner{err: errors.New("db down")}
	ac, err := NewAuditCron(AuditCronConfig{Schedule: "@daily"}, runner, nil, nil, nil)
	require.NoError(t, err)

	assert.EqualError(t, ac.RunNow(context.Background()), "db down")
}

func TestAuditCron_OnlyOneHolderRuns(t *testing.T) {
	locker := lock.NewLocalLocker()
	runner := &fakeAuditRunner{blockOn: make(chan struct{})}
	first, err := NewAuditCron(AuditCronConfig{Schedule: "@daily"}, runner, nil, locker, nil)
	require.NoError(t, err)
	second, err := NewAuditCron(AuditCronConfig{Schedule: "@daily"}, runner, nil, locker, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- first.RunNow(context.Background()) }()
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, second.RunNow(context.Background()), lock.ErrNotObtained)

	close(runner.blockOn)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestAuditCron_StartStop(t *testing.T) {
	runner := &fakeAuditRunner{}
	ac, err := NewAuditCron(AuditCronConfig{Schedule: "@every 1s", Timezone: "Nowhere/Unknown"}, runner, nil, nil, nil)
	require.NoError(t, err)

	ac.Start()
	ac.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ac.Stop(ctx))
	assert.NoError(t, ac.Stop(ctx))
}
