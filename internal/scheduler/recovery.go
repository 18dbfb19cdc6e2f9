package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// pendingRecoverer reschedules broadcasts nobody is delivering
type pendingRecoverer interface {
	RecoverPending(ctx context.Context, grace time.Duration) (int, error)
}

// Recovery periodically picks up broadcasts left pending, e.g. after a
// restart dropped the in-memory run that was scheduled for them.
type Recovery struct {
	c       *cron.Cron
	target  pendingRecoverer
	grace   time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRecovery registers the recovery job under the given cron spec.
// Descriptors such as "@every 1m" are accepted.
func NewRecovery(spec string, grace time.Duration, target pendingRecoverer, logger zerolog.Logger) (*Recovery, error) {
	r := &Recovery{
		c:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		target:  target,
		grace:   grace,
		timeout: 30 * time.Second,
		logger:  logger.With().Str("component", "broadcast_recovery").Logger(),
	}
	if _, err := r.c.AddFunc(spec, r.runOnce); err != nil {
		return nil, fmt.Errorf("parse recovery spec %q: %w", spec, err)
	}
	return r, nil
}

// Start runs the job on its schedule in the background
func (r *Recovery) Start() {
	r.c.Start()
}

// Stop stops the schedule and waits for a running job, bounded by ctx
func (r *Recovery) Stop(ctx context.Context) error {
	select {
	case <-r.c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recovery) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.target.RecoverPending(ctx, r.grace)
	if err != nil {
		r.logger.Error().Err(err).Msg("recover pending broadcasts")
		return
	}
	if n > 0 {
		r.logger.Info().Int("rescheduled", n).Msg("pending broadcasts rescheduled")
	}
}
