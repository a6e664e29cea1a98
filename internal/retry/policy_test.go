package retry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestBackoffDoubles(t *testing.T) {
	t.Parallel()

	p := Policy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Duration(0), p.Backoff(0))
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
	assert.Equal(t, 4*time.Second, p.Backoff(3))
	assert.Equal(t, 5*time.Second, p.Backoff(4))
	assert.Equal(t, 5*time.Second, p.Backoff(40))
}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: sleeper.sleep}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("busy"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	p := Policy{MaxAttempts: 5, BaseDelay: time.Second, Sleep: sleeper.sleep}

	calls := 0
	boom := Permanent(errors.New("bad request"))
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.waits)
	assert.False(t, errors.Is(err, ErrExhausted))
}

func TestDoExhaustsBudget(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: sleeper.sleep}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return Transient(errors.New("timeout"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, sleeper.waits, 2)
	assert.True(t, errors.Is(err, ErrExhausted))
	assert.Contains(t, err.Error(), "timeout")
}

func TestDoHonoursRetryAfterHint(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	p := Policy{MaxAttempts: 2, BaseDelay: time.Second, Sleep: sleeper.sleep}

	_ = p.Do(context.Background(), func(context.Context) error {
		return WithRetryAfter(Transient(errors.New("slow down")), 7*time.Second)
	})

	assert.Equal(t, []time.Duration{7 * time.Second}, sleeper.waits)
}

func TestDoAbortsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Default().Do(ctx, func(context.Context) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.Zero(t, calls)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFromStatus(t *testing.T) {
	t.Parallel()

	base := errors.New("status")
	assert.True(t, IsTransient(FromStatus(http.StatusTooManyRequests, base)))
	assert.True(t, IsTransient(FromStatus(http.StatusBadGateway, base)))
	assert.False(t, IsTransient(FromStatus(http.StatusBadRequest, base)))
	assert.True(t, errors.Is(FromStatus(http.StatusForbidden, base), ErrPermanent))
	assert.False(t, IsTransient(nil))
}
