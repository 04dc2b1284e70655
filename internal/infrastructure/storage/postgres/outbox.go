package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/outbox"
)

// Compile-time check.
var _ outbox.Repository = (*OutboxRepo)(nil)

const outboxColumns = `id, event_type, aggregate_type, aggregate_id, payload, status,
	retry_count, max_retries, error_message, last_error_at, dispatch_handle,
	created_at, published_at, processed_at`

// OutboxRepo persists ledger entries in the outbox_events table.
// All status transitions refuse to touch a processed entry: processed is
// terminal and immutable.
type OutboxRepo struct {
	txManager *TxManager
}

// NewOutboxRepo creates a new outbox repository.
func NewOutboxRepo(txManager *TxManager) *OutboxRepo {
	return &OutboxRepo{txManager: txManager}
}

// Create inserts a pending entry within the current transaction.
// MUST be called inside a transaction context so the entry commits with the
// triggering entity mutation.
func (r *OutboxRepo) Create(ctx context.Context, event *outbox.Event) error {
	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox create requires transaction context")
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_events (id, event_type, aggregate_type, aggregate_id, payload, status, max_retries, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.ID, event.EventType, event.AggregateType, event.AggregateID,
		event.Payload, event.Status, event.MaxRetries, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// CreateBatch inserts multiple pending entries in one round trip.
func (r *OutboxRepo) CreateBatch(ctx context.Context, events []*outbox.Event) error {
	tx := r.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox create requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO outbox_events (id, event_type, aggregate_type, aggregate_id, payload, status, max_retries, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, event.ID, event.EventType, event.AggregateType, event.AggregateID,
			event.Payload, event.Status, event.MaxRetries, event.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert outbox event: %w", err)
		}
	}
	return nil
}

// Get retrieves one ledger entry.
func (r *OutboxRepo) Get(ctx context.Context, eventID id.ID) (*outbox.Event, error) {
	var event outbox.Event
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &event, `
		SELECT `+outboxColumns+`
		FROM outbox_events
		WHERE id = $1
	`, eventID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("outbox_event", eventID.String())
		}
		return nil, fmt.Errorf("get outbox event: %w", err)
	}
	return &event, nil
}

// MarkPublished records a dispatch attempt. published_at is set exactly once
// (the first dispatch wins); later redispatches only refresh the handle.
func (r *OutboxRepo) MarkPublished(ctx context.Context, eventID id.ID, handle string) error {
	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, `
		UPDATE outbox_events
		SET status = $1,
		    dispatch_handle = $2,
		    published_at = COALESCE(published_at, NOW())
		WHERE id = $3 AND status <> $4
	`, outbox.StatusPublished, handle, eventID, outbox.StatusProcessed)
	if err != nil {
		return fmt.Errorf("mark outbox event published: %w", err)
	}
	return nil
}

// MarkProcessed is the terminal success transition.
func (r *OutboxRepo) MarkProcessed(ctx context.Context, eventID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, `
		UPDATE outbox_events
		SET status = $1,
		    processed_at = COALESCE(processed_at, NOW())
		WHERE id = $2 AND status <> $1
	`, outbox.StatusProcessed, eventID)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}

// MarkFailed records a failure. Transient failures increment retry_count up
// to max_retries; permanent failures exhaust the budget immediately so the
// sweeper never redispatches them.
func (r *OutboxRepo) MarkFailed(ctx context.Context, eventID id.ID, errMsg string, permanent bool) error {
	querier := r.txManager.GetQuerier(ctx)
	var err error
	if permanent {
		_, err = querier.Exec(ctx, `
			UPDATE outbox_events
			SET status = $1,
			    error_message = $2,
			    last_error_at = NOW(),
			    retry_count = max_retries
			WHERE id = $3 AND status <> $4
		`, outbox.StatusFailed, errMsg, eventID, outbox.StatusProcessed)
	} else {
		_, err = querier.Exec(ctx, `
			UPDATE outbox_events
			SET status = $1,
			    error_message = $2,
			    last_error_at = NOW(),
			    retry_count = LEAST(retry_count + 1, max_retries)
			WHERE id = $3 AND status <> $4
		`, outbox.StatusFailed, errMsg, eventID, outbox.StatusProcessed)
	}
	if err != nil {
		return fmt.Errorf("mark outbox event failed: %w", err)
	}
	return nil
}

// ClaimForProcessing succeeds only while the entry is not processed yet.
func (r *OutboxRepo) ClaimForProcessing(ctx context.Context, eventID id.ID) (bool, error) {
	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, `
		UPDATE outbox_events
		SET status = $1,
		    published_at = COALESCE(published_at, NOW())
		WHERE id = $2 AND status <> $3
	`, outbox.StatusPublished, eventID, outbox.StatusProcessed)
	if err != nil {
		return false, fmt.Errorf("claim outbox event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListStalePending returns pending entries the dispatcher failed to submit.
func (r *OutboxRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*outbox.Event, error) {
	return r.list(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_events
		WHERE status = $1
		  AND published_at IS NULL
		  AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`, outbox.StatusPending, cutoff, limit)
}

// ListStalePublished returns published entries never marked processed within
// the grace window. A submission accepted by an in-process queue dies with
// the process; these entries are only recoverable by redelivery.
func (r *OutboxRepo) ListStalePublished(ctx context.Context, cutoff time.Time, limit int) ([]*outbox.Event, error) {
	return r.list(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_events
		WHERE status = $1
		  AND processed_at IS NULL
		  AND published_at < $2
		ORDER BY published_at
		LIMIT $3
	`, outbox.StatusPublished, cutoff, limit)
}

// ListRetryableFailed returns failed entries with retry budget left.
func (r *OutboxRepo) ListRetryableFailed(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return r.list(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_events
		WHERE status = $1
		  AND retry_count < max_retries
		ORDER BY last_error_at
		LIMIT $2
	`, outbox.StatusFailed, limit)
}

// ListExhausted returns failed entries at max retries, for operational
// visibility and manual remediation.
func (r *OutboxRepo) ListExhausted(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return r.list(ctx, `
		SELECT `+outboxColumns+`
		FROM outbox_events
		WHERE status = $1
		  AND retry_count >= max_retries
		ORDER BY last_error_at
		LIMIT $2
	`, outbox.StatusFailed, limit)
}

func (r *OutboxRepo) list(ctx context.Context, sql string, args ...any) ([]*outbox.Event, error) {
	var events []*outbox.Event
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &events, sql, args...); err != nil {
		return nil, fmt.Errorf("list outbox events: %w", err)
	}
	return events, nil
}
