package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// NonceSweeper clears nonces issued before the cutoff and reports how many.
type NonceSweeper interface {
	ClearStaleNonces(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	nonces   NonceSweeper
	spec     string
	nonceTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewScheduler builds a scheduler whose sweep runs on spec, a six-field
// cron expression with seconds.
func NewScheduler(nonces NonceSweeper, spec string, nonceTTL time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		nonces:   nonces,
		spec:     spec,
		nonceTTL: nonceTTL,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

func (s *Scheduler) Start() error {
	if s.nonces == nil || s.spec == "" || s.nonceTTL <= 0 {
		s.log.Info().Msg("nonce sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.sweepNonces); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running sweep until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) sweepNonces() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := s.nonces.ClearStaleNonces(ctx, s.now().Add(-s.nonceTTL))
	if err != nil {
		s.log.Error().Err(err).Msg("nonce sweep failed")
		return
	}
	if cleared > 0 {
		s.log.Info().Int64("cleared", cleared).Msg("stale nonces cleared")
	}
}
