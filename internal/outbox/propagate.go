package outbox

import (
	"context"
	"time"

	"pms/internal/core/apperror"
	"pms/pkg/logger"
)

// DefaultMaxDepth is the hard backstop for cascade recursion, independent of
// the visited-set cycle protection.
const DefaultMaxDepth = 10

// CascadeAuditor records a summary of a completed cascade. Implemented by
// the postgres audit store; optional.
type CascadeAuditor interface {
	RecordCascade(ctx context.Context, event *Event, deleted map[string]int) error
}

// visitKey identifies an entity instance during a walk.
type visitKey struct {
	typ string
	id  string
}

// SoftDeleteHandler propagates a soft delete through the aggregate's
// registered relations.
//
// The walk is depth-first over the relation registry with a visited set for
// cycle and diamond protection. Children are deleted per relation in one
// batch statement that skips rows already deleted, so earlier independent
// deletions keep their original timestamps. The caller (Worker) wraps Handle
// in a single transaction: a failed walk persists nothing.
type SoftDeleteHandler struct {
	registry *Registry
	store    CascadeStore
	auditor  CascadeAuditor
	maxDepth int
}

// NewSoftDeleteHandler creates the cascade handler. auditor may be nil.
func NewSoftDeleteHandler(registry *Registry, store CascadeStore, auditor CascadeAuditor) *SoftDeleteHandler {
	return &SoftDeleteHandler{
		registry: registry,
		store:    store,
		auditor:  auditor,
		maxDepth: DefaultMaxDepth,
	}
}

// Handle resolves the aggregate and cascades its deletion.
func (h *SoftDeleteHandler) Handle(ctx context.Context, event *Event) error {
	agg, ok := h.registry.Lookup(event.AggregateType)
	if !ok {
		return apperror.NewUnknownAggregate(event.AggregateType)
	}

	exists, err := h.store.Exists(ctx, agg.Table, event.AggregateID)
	if err != nil {
		return err
	}
	if !exists {
		// Hard-deleted by an unrelated process: permanent, retrying
		// cannot bring the row back.
		return apperror.NewAggregateGone(event.AggregateType, event.AggregateID)
	}

	now := time.Now().UTC()
	visited := map[visitKey]struct{}{
		{typ: event.AggregateType, id: event.AggregateID}: {},
	}
	deleted := make(map[string]int)

	if err := h.walk(ctx, agg, event.AggregateID, visited, deleted, 0, now); err != nil {
		return err
	}

	logger.Info(ctx, "soft delete propagated",
		"aggregate_type", event.AggregateType,
		"aggregate_id", event.AggregateID,
		"descendants", countTotal(deleted),
	)

	if h.auditor != nil {
		if err := h.auditor.RecordCascade(ctx, event, deleted); err != nil {
			return err
		}
	}
	return nil
}

// walk soft-deletes all live children of parentID and recurses into each
// row it actually updated.
func (h *SoftDeleteHandler) walk(ctx context.Context, agg Aggregate, parentID string, visited map[visitKey]struct{}, deleted map[string]int, depth int, now time.Time) error {
	if depth >= h.maxDepth {
		return apperror.NewCascadeDepthExceeded(agg.Type, h.maxDepth)
	}

	for _, rel := range agg.Relations {
		childIDs, err := h.store.SoftDeleteChildren(ctx, rel, parentID, now)
		if err != nil {
			return err
		}
		if len(childIDs) == 0 {
			continue
		}

		deleted[rel.ChildType] += len(childIDs)
		logger.Debug(ctx, "cascade step",
			"relation", rel.Name,
			"parent_type", agg.Type,
			"parent_id", parentID,
			"child_type", rel.ChildType,
			"count", len(childIDs),
			"depth", depth,
		)

		childAgg, ok := h.registry.Lookup(rel.ChildType)
		if !ok {
			// Leaf type: soft-deletable but owns no registered
			// relations of its own.
			continue
		}

		for _, childID := range childIDs {
			key := visitKey{typ: rel.ChildType, id: childID}
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}

			if err := h.walk(ctx, childAgg, childID, visited, deleted, depth+1, now); err != nil {
				return err
			}
		}
	}
	return nil
}

func countTotal(deleted map[string]int) int {
	total := 0
	for _, n := range deleted {
		total += n
	}
	return total
}
