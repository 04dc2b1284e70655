package outbox

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/pkg/logger"
)

var workerTracer = otel.Tracer("pms/outbox")

// Handler processes one ledger entry of a given event type.
//
// Handle runs inside the worker's transaction: every write it performs and
// the processed mark commit together, or nothing does. A returned error rolls
// the whole attempt back; apperror.IsPermanent decides whether the failure
// consumes the full retry budget.
type Handler interface {
	Handle(ctx context.Context, event *Event) error
}

// Worker executes ledger entries delivered by the execution facility.
type Worker struct {
	repo     Repository
	txm      tx.Manager
	handlers map[string]Handler
}

// NewWorker creates a worker with no registered handlers.
func NewWorker(repo Repository, txm tx.Manager) *Worker {
	return &Worker{
		repo:     repo,
		txm:      txm,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler binds a handler to an event type.
func (w *Worker) RegisterHandler(eventType string, h Handler) {
	w.handlers[eventType] = h
}

// Process executes one ledger entry end to end. Safe under duplicate and
// late deliveries: already-processed entries are skipped without writes.
func (w *Worker) Process(ctx context.Context, eventID id.ID) error {
	ctx, span := workerTracer.Start(ctx, "outbox.process",
		trace.WithAttributes(attribute.String("event_id", eventID.String())))
	defer span.End()

	event, err := w.repo.Get(ctx, eventID)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Error(ctx, "outbox event not found", "event_id", eventID)
			return nil
		}
		return err
	}

	// Idempotency guard: duplicate or late delivery of a finished entry.
	if event.Status == StatusProcessed {
		logger.Debug(ctx, "outbox event already processed", "event_id", eventID)
		return nil
	}

	// Narrow the window where two workers run the same entry: the claim
	// fails once a competing worker has marked the entry processed.
	claimed, err := w.repo.ClaimForProcessing(ctx, eventID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	span.SetAttributes(
		attribute.String("event_type", event.EventType),
		attribute.String("aggregate_type", event.AggregateType),
		attribute.String("aggregate_id", event.AggregateID),
	)

	handler, ok := w.handlers[event.EventType]
	if !ok {
		w.fail(ctx, event, apperror.NewUnknownEventType(event.EventType))
		return nil
	}

	// One transaction wraps the handler and the processed mark: the
	// entry's effects are all-or-nothing.
	err = w.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := handler.Handle(ctx, event); err != nil {
			return err
		}
		return w.repo.MarkProcessed(ctx, event.ID)
	})
	if err != nil {
		w.fail(ctx, event, err)
		return err
	}

	logger.Info(ctx, "outbox event processed",
		"event_id", event.ID,
		"event_type", event.EventType,
		"aggregate_type", event.AggregateType,
		"aggregate_id", event.AggregateID,
	)
	return nil
}

// fail records a failure on the ledger entry after the handler transaction
// has rolled back. Permanent failures exhaust the retry budget immediately.
func (w *Worker) fail(ctx context.Context, event *Event, cause error) {
	permanent := apperror.IsPermanent(cause)

	logger.Error(ctx, "outbox event failed",
		"event_id", event.ID,
		"event_type", event.EventType,
		"permanent", permanent,
		"retry_count", event.RetryCount,
		"error", cause,
	)

	if err := w.repo.MarkFailed(ctx, event.ID, cause.Error(), permanent); err != nil {
		logger.Error(ctx, "failed to mark outbox event failed",
			"event_id", event.ID,
			"error", err,
		)
	}
}
