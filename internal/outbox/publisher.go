package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"pms/internal/core/tx"
	"pms/pkg/logger"
)

// Publisher writes ledger entries inside the caller's transaction and
// registers the commit-time dispatch hook for each of them.
//
// Fast path: after the transaction commits, the hook submits the entry id to
// the execution facility and marks the entry published. If submission fails
// the entry simply stays pending; the sweeper is the guaranteed path. Nothing
// here can fail the caller's transaction once Create has succeeded.
type Publisher struct {
	repo  Repository
	txm   tx.Manager
	queue Queue
}

// NewPublisher creates a new outbox publisher.
func NewPublisher(repo Repository, txm tx.Manager, queue Queue) *Publisher {
	return &Publisher{repo: repo, txm: txm, queue: queue}
}

// Publish writes one event to the ledger within the current transaction and
// arranges best-effort dispatch after commit.
// MUST be called inside a transaction context.
func (p *Publisher) Publish(ctx context.Context, eventType, aggregateType, aggregateID string, payload any) (*Event, error) {
	payloadBytes, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}

	event := NewEvent(eventType, aggregateType, aggregateID, payloadBytes)
	if err := p.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := p.txm.OnCommit(ctx, func(ctx context.Context) {
		p.dispatch(ctx, event)
	}); err != nil {
		return nil, err
	}

	return event, nil
}

// PublishSoftDelete enqueues a soft-delete propagation event for an
// aggregate. Payload carries nothing beyond aggregate identity.
func (p *Publisher) PublishSoftDelete(ctx context.Context, aggregateType, aggregateID string) (*Event, error) {
	return p.Publish(ctx, EventSoftDeletePropagate, aggregateType, aggregateID, nil)
}

// PublishBatch writes multiple events in one round trip and registers one
// dispatch hook covering all of them. Used by periodic producers such as the
// leave grant scheduler.
func (p *Publisher) PublishBatch(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := p.repo.CreateBatch(ctx, events); err != nil {
		return fmt.Errorf("insert outbox events: %w", err)
	}
	return p.txm.OnCommit(ctx, func(ctx context.Context) {
		for _, event := range events {
			p.dispatch(ctx, event)
		}
	})
}

// dispatch is the commit-time fast path. Runs outside any transaction.
func (p *Publisher) dispatch(ctx context.Context, event *Event) {
	handle, err := p.queue.Submit(ctx, event.ID)
	if err != nil {
		// Entry stays pending; the sweeper redispatches it after the
		// grace window.
		logger.Warn(ctx, "outbox dispatch failed, leaving entry pending",
			"event_id", event.ID,
			"event_type", event.EventType,
			"error", err,
		)
		return
	}

	if err := p.repo.MarkPublished(ctx, event.ID, handle); err != nil {
		logger.Error(ctx, "failed to mark outbox event published",
			"event_id", event.ID,
			"error", err,
		)
	}
}

func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return b, nil
}
