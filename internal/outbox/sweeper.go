package outbox

import (
	"context"
	"time"

	"pms/pkg/logger"
)

// SweeperConfig tunes the reconciliation sweep.
type SweeperConfig struct {
	// Interval between sweeps.
	Interval time.Duration

	// GraceWindow is how long a pending entry may sit before it counts as
	// stuck. Keeps the sweeper from racing a commit hook that is still
	// running.
	GraceWindow time.Duration

	// BatchSize limits entries fetched per category per sweep.
	BatchSize int
}

// DefaultSweeperConfig returns production defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:    15 * time.Second,
		GraceWindow: 10 * time.Second,
		BatchSize:   100,
	}
}

// Sweeper is the periodic safety net behind the commit-time dispatcher.
// It redispatches entries the fast path failed to submit, published entries
// whose submission was lost before processing, and failed entries with retry
// budget left. Under normal operation it finds nothing to do.
type Sweeper struct {
	repo  Repository
	queue Queue
	cfg   SweeperConfig
}

// NewSweeper creates a sweeper.
func NewSweeper(repo Repository, queue Queue, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweeperConfig().Interval
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = DefaultSweeperConfig().GraceWindow
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultSweeperConfig().BatchSize
	}
	return &Sweeper{repo: repo, queue: queue, cfg: cfg}
}

// Run sweeps at the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logger.Error(ctx, "outbox sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce performs one reconciliation pass and returns the number of
// entries redispatched.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	redispatched := 0

	// Entries the commit-time dispatcher never managed to submit.
	cutoff := time.Now().UTC().Add(-s.cfg.GraceWindow)
	stale, err := s.repo.ListStalePending(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return redispatched, err
	}
	for _, event := range stale {
		if s.redispatch(ctx, event, "stale_pending") {
			redispatched++
		}
	}

	// Entries submitted but never processed: the submission lived in a
	// process that crashed or restarted before its pool drained. Without
	// this pass a lost submission strands the entry published forever.
	stuck, err := s.repo.ListStalePublished(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return redispatched, err
	}
	for _, event := range stuck {
		if s.redispatch(ctx, event, "stale_published") {
			redispatched++
		}
	}

	// Failed entries still inside their retry budget. Exhausted entries
	// stay untouched: they are surfaced via ListExhausted, not retried
	// forever.
	failed, err := s.repo.ListRetryableFailed(ctx, s.cfg.BatchSize)
	if err != nil {
		return redispatched, err
	}
	for _, event := range failed {
		if s.redispatch(ctx, event, "failed_retryable") {
			redispatched++
		}
	}

	if redispatched > 0 {
		logger.Warn(ctx, "outbox sweep redispatched entries", "count", redispatched)
	}
	return redispatched, nil
}

func (s *Sweeper) redispatch(ctx context.Context, event *Event, reason string) bool {
	handle, err := s.queue.Submit(ctx, event.ID)
	if err != nil {
		logger.Error(ctx, "sweeper redispatch failed",
			"event_id", event.ID,
			"reason", reason,
			"error", err,
		)
		return false
	}

	if err := s.repo.MarkPublished(ctx, event.ID, handle); err != nil {
		logger.Error(ctx, "sweeper failed to mark event published",
			"event_id", event.ID,
			"error", err,
		)
		return false
	}

	logger.Info(ctx, "outbox event redispatched",
		"event_id", event.ID,
		"event_type", event.EventType,
		"reason", reason,
		"retry_count", event.RetryCount,
	)
	return true
}
