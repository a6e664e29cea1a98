package delivery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/ports"
	"DailyBrief/internal/retry"
)

// ErrExhausted marks a delivery whose retry budget ran out on some chunk.
var ErrExhausted = retry.ErrExhausted

// Options tune a Deliverer. Zero values select the defaults.
type Options struct {
	Policy retry.Policy
	Pause  time.Duration
	Limit  int
	Logger *slog.Logger
}

// Deliverer sends a rendered message as one or more ordered chunks.
type Deliverer struct {
	messenger ports.Messenger
	policy    retry.Policy
	pause     time.Duration
	limit     int
	logger    *slog.Logger
}

// NewDeliverer wires a messenger with its retry policy.
func NewDeliverer(messenger ports.Messenger, opts Options) *Deliverer {
	policy := opts.Policy
	if policy.MaxAttempts == 0 {
		policy = retry.Default()
	}
	if policy.Sleep == nil {
		policy.Sleep = retry.Sleep
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = MaxMessageRunes
	}
	d := &Deliverer{
		messenger: messenger,
		policy:    policy,
		pause:     opts.Pause,
		limit:     limit,
		logger:    opts.Logger,
	}
	if d.policy.OnRetry == nil {
		d.policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			d.warn("send failed, retrying", "attempt", attempt, "wait", wait, "error", err)
		}
	}
	return d
}

// Deliver succeeds only when every chunk was accepted. A permanent error or an
// exhausted retry budget stops delivery at the failing chunk.
func (d *Deliverer) Deliver(ctx context.Context, text, destination string) error {
	if d.messenger == nil {
		return errors.New("no messenger configured")
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to deliver")
	}

	chunks := Split(text, d.limit)
	sent := 0
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if sent > 0 && d.pause > 0 {
			if err := d.policy.Sleep(ctx, d.pause); err != nil {
				return errors.Wrap(err, "delivery interrupted")
			}
		}

		err := d.policy.Do(ctx, func(ctx context.Context) error {
			return d.messenger.Send(ctx, destination, chunk)
		})
		if err != nil {
			return errors.Wrapf(err, "deliver part %d/%d", i+1, len(chunks))
		}
		sent++
		d.info("message part sent", "part", i+1, "parts", len(chunks))
	}
	return nil
}

func (d *Deliverer) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *Deliverer) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
