package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pms/internal/core/apperror"
	"pms/internal/infrastructure/http/v1/dto"
	"pms/internal/outbox"
)

// OutboxHandler exposes the operational surface of the outbox ledger:
// inspecting failed entries and manually redispatching them.
type OutboxHandler struct {
	BaseHandler
	repo  outbox.Repository
	queue outbox.Queue
}

// NewOutboxHandler creates a new outbox handler.
func NewOutboxHandler(repo outbox.Repository, queue outbox.Queue) *OutboxHandler {
	return &OutboxHandler{repo: repo, queue: queue}
}

// List returns ledger entries filtered by status. With status=failed,
// exhausted=true returns entries whose retry budget ran out and
// exhausted=false those still eligible for automatic redispatch;
// status=pending returns entries the commit-time dispatcher never submitted;
// status=published returns submitted entries whose processing never finished.
// GET /v1/outbox/events
func (h *OutboxHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.HandleError(c, apperror.NewValidation("limit must be between 1 and 500"))
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()
	var (
		events []*outbox.Event
		err    error
	)
	switch status := c.DefaultQuery("status", "failed"); status {
	case "failed":
		if c.Query("exhausted") == "true" {
			events, err = h.repo.ListExhausted(ctx, limit)
		} else {
			events, err = h.repo.ListRetryableFailed(ctx, limit)
		}
	case "pending":
		events, err = h.repo.ListStalePending(ctx, time.Now(), limit)
	case "published":
		events, err = h.repo.ListStalePublished(ctx, time.Now(), limit)
	default:
		h.HandleError(c, apperror.NewValidation("status must be failed, pending or published"))
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromOutboxEvents(events),
		TotalCount: int64(len(events)),
		Limit:      limit,
	})
}

// Get returns a single ledger entry.
// GET /v1/outbox/events/:id
func (h *OutboxHandler) Get(c *gin.Context) {
	eventID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	event, err := h.repo.Get(c.Request.Context(), eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromOutboxEvent(event))
}

// Retry manually redispatches a ledger entry. Works on any non-processed
// entry, including exhausted ones; processed entries are immutable.
// POST /v1/outbox/events/:id/retry
func (h *OutboxHandler) Retry(c *gin.Context) {
	eventID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	event, err := h.repo.Get(ctx, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if event.Status == outbox.StatusProcessed {
		h.HandleError(c, apperror.NewConflict("event already processed"))
		return
	}

	handle, err := h.queue.Submit(ctx, event.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.repo.MarkPublished(ctx, event.ID, handle); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true, Message: "event redispatched"})
}
