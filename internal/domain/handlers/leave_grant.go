package handlers

import (
	"context"
	"encoding/json"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/domain/leaves"
	"pms/internal/domain/users"
	"pms/internal/outbox"
	"pms/pkg/logger"
)

// LeaveGrantPayload is the body of a leave.annual_grant event.
type LeaveGrantPayload struct {
	// GrantedOn is the day the grant is evaluated for (RFC 3339 date)
	GrantedOn string `json:"grantedOn"`
}

// LeaveGrant credits annual leave to a user per the grant rules. Idempotent
// through the per-day grant uniqueness check in the leave service.
type LeaveGrant struct {
	users  users.Repository
	leaves *leaves.Service
}

var _ outbox.Handler = (*LeaveGrant)(nil)

// NewLeaveGrant creates the grant handler.
func NewLeaveGrant(u users.Repository, l *leaves.Service) *LeaveGrant {
	return &LeaveGrant{users: u, leaves: l}
}

// Handle runs inside the worker transaction.
func (h *LeaveGrant) Handle(ctx context.Context, event *outbox.Event) error {
	userID, err := id.Parse(event.AggregateID)
	if err != nil {
		return apperror.NewAggregateGone(event.AggregateType, event.AggregateID).WithCause(err)
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewAggregateGone(event.AggregateType, event.AggregateID)
		}
		return err
	}
	if user.IsDeleted() || !user.IsActive || user.HiredAt == nil {
		logger.Debug(ctx, "user not eligible for leave grant", "user_id", userID)
		return nil
	}

	day := event.CreatedAt
	var payload LeaveGrantPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return apperror.NewValidation("malformed leave grant payload").WithCause(err)
		}
		if payload.GrantedOn != "" {
			parsed, err := time.Parse("2006-01-02", payload.GrantedOn)
			if err != nil {
				return apperror.NewValidation("malformed grant date").WithCause(err)
			}
			day = parsed
		}
	}

	grant, err := h.leaves.ApplyGrant(ctx, userID, *user.HiredAt, day)
	if err != nil {
		return err
	}
	if grant != nil {
		logger.Info(ctx, "leave granted",
			"user_id", userID,
			"days", grant.Days,
			"reason", grant.Reason,
			"expires_on", grant.ExpiresOn,
		)
	}
	return nil
}
