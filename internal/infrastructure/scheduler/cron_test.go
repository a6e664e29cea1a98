package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/logging"
)

func TestStartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not a cron", time.UTC, logging.Discard())
	err := s.Start(context.Background(), func(time.Time) {})
	require.Error(t, err)
	assert.True(t, s.Next().IsZero())
}

func TestStartComputesNextInLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	s := NewCronScheduler("30 6 * * *", loc, logging.Discard())
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	defer func() { _ = s.Stop(context.Background()) }()

	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	next := s.Next().In(loc)
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 30, next.Minute())

	assert.Error(t, s.Start(context.Background(), func(time.Time) {}), "second start")
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 7 * * *", nil, nil)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestCancelStopsScheduler(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("* * * * *", time.UTC, logging.Discard())
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	cancel()
	require.Eventually(t, func() bool { return s.Next().IsZero() }, time.Second, 10*time.Millisecond)
}
