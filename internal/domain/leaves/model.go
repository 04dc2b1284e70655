// Package leaves provides annual leave grants and leave requests.
package leaves

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// LeaveGrant is a batch of leave days credited to a user. Grants expire; the
// balance of a user is the sum of unexpired grant days minus approved
// request days.
type LeaveGrant struct {
	entity.Base

	UserID    id.ID           `db:"user_id" json:"userId"`
	Days      decimal.Decimal `db:"days" json:"days"`
	GrantedOn time.Time       `db:"granted_on" json:"grantedOn"`
	ExpiresOn time.Time       `db:"expires_on" json:"expiresOn"`
	Reason    string          `db:"reason" json:"reason"`
}

// NewLeaveGrant creates a grant row.
func NewLeaveGrant(userID id.ID, days decimal.Decimal, grantedOn, expiresOn time.Time, reason string) *LeaveGrant {
	return &LeaveGrant{
		Base:      entity.NewBase(),
		UserID:    userID,
		Days:      days,
		GrantedOn: grantedOn,
		ExpiresOn: expiresOn,
		Reason:    reason,
	}
}

// Validate implements entity.Validatable interface.
func (g *LeaveGrant) Validate(ctx context.Context) error {
	if id.IsNil(g.UserID) {
		return apperror.NewValidation("user is required").
			WithDetail("field", "userId")
	}
	if !g.Days.IsPositive() {
		return apperror.NewValidation("days must be positive").
			WithDetail("field", "days")
	}
	if !g.ExpiresOn.After(g.GrantedOn) {
		return apperror.NewValidation("expiry must follow the grant date").
			WithDetail("field", "expiresOn")
	}
	return nil
}

// RequestStatus is the leave request workflow state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ApprovalStep is one pending or completed approval in a request.
type ApprovalStep struct {
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

// LeaveRequest is an employee's request to consume leave days.
type LeaveRequest struct {
	entity.Base

	UserID    id.ID           `db:"user_id" json:"userId"`
	StartsOn  time.Time       `db:"starts_on" json:"startsOn"`
	EndsOn    time.Time       `db:"ends_on" json:"endsOn"`
	Days      decimal.Decimal `db:"days" json:"days"`
	IsHalfDay bool            `db:"is_half_day" json:"isHalfDay"`
	Status    RequestStatus   `db:"status" json:"status"`

	// Steps holds the approval chain as JSON, set at creation from the
	// approval policy
	Steps json.RawMessage `db:"steps" json:"steps"`
}

// NewLeaveRequest creates a pending request.
func NewLeaveRequest(userID id.ID, startsOn, endsOn time.Time, days decimal.Decimal, halfDay bool) *LeaveRequest {
	return &LeaveRequest{
		Base:      entity.NewBase(),
		UserID:    userID,
		StartsOn:  startsOn,
		EndsOn:    endsOn,
		Days:      days,
		IsHalfDay: halfDay,
		Status:    RequestPending,
		Steps:     json.RawMessage("[]"),
	}
}

// Validate implements entity.Validatable interface.
func (r *LeaveRequest) Validate(ctx context.Context) error {
	if id.IsNil(r.UserID) {
		return apperror.NewValidation("user is required").
			WithDetail("field", "userId")
	}
	if r.EndsOn.Before(r.StartsOn) {
		return apperror.NewValidation("end date precedes start date").
			WithDetail("field", "endsOn")
	}
	if !r.Days.IsPositive() {
		return apperror.NewValidation("days must be positive").
			WithDetail("field", "days")
	}
	if r.IsHalfDay && !r.Days.Equal(decimal.NewFromFloat(0.5)) {
		return apperror.NewValidation("half-day request must be 0.5 days").
			WithDetail("field", "days")
	}
	switch r.Status {
	case RequestPending, RequestApproved, RequestRejected:
	default:
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(r.Status))
	}
	return nil
}
