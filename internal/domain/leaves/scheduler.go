package leaves

import (
	"context"
	"encoding/json"
	"time"

	"pms/internal/core/tx"
	"pms/internal/domain/users"
	"pms/internal/outbox"
	"pms/pkg/logger"
)

// Scheduler periodically enqueues leave.annual_grant events for every user
// whose grant rule fires on the current day. Runs hourly; the per-day grant
// uniqueness check downstream makes repeated runs within the day harmless.
type Scheduler struct {
	users     users.Repository
	publisher *outbox.Publisher
	txManager tx.Manager
	interval  time.Duration
	now       func() time.Time
}

// NewScheduler creates the grant scheduler.
func NewScheduler(u users.Repository, publisher *outbox.Publisher, txManager tx.Manager) *Scheduler {
	return &Scheduler{
		users:     u,
		publisher: publisher,
		txManager: txManager,
		interval:  time.Hour,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled, evaluating grants once immediately and
// then every interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info(ctx, "leave grant scheduler started", "interval", s.interval)

	for {
		if n, err := s.RunOnce(ctx); err != nil {
			logger.Error(ctx, "leave grant scheduling failed", "error", err)
		} else if n > 0 {
			logger.Info(ctx, "leave grant events enqueued", "count", n)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "leave grant scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce enqueues grant events for all users due today. Returns the number
// of events written.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	today := s.now().UTC()

	eligible, err := s.users.ListActiveHired(ctx)
	if err != nil {
		return 0, err
	}

	var events []*outbox.Event
	for _, u := range eligible {
		if EvaluateGrant(*u.HiredAt, today) == nil {
			continue
		}
		payload, err := json.Marshal(map[string]string{
			"grantedOn": today.Format("2006-01-02"),
		})
		if err != nil {
			return 0, err
		}
		events = append(events, outbox.NewEvent(
			outbox.EventAnnualLeaveGrant, users.AggregateType, u.ID.String(), payload))
	}
	if len(events) == 0 {
		return 0, nil
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.publisher.PublishBatch(ctx, events)
	})
	if err != nil {
		return 0, err
	}
	return len(events), nil
}
