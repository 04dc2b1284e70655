package leaves

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// Registry type names. Leave rows cascade from the owning user.
const (
	GrantType   = "leave_grant"
	RequestType = "leave_request"
)

// GrantRepository defines storage operations for leave grants.
type GrantRepository interface {
	domain.Repository[*LeaveGrant]

	// HasGrantOn reports whether a live grant for the user already exists
	// on the given date. Makes grant processing idempotent.
	HasGrantOn(ctx context.Context, userID id.ID, grantedOn time.Time) (bool, error)

	// SumUnexpired returns the total live, unexpired grant days as of a date.
	SumUnexpired(ctx context.Context, userID id.ID, asOf time.Time) (decimal.Decimal, error)
}

// RequestRepository defines storage operations for leave requests.
type RequestRepository interface {
	domain.Repository[*LeaveRequest]

	// SumApproved returns the total approved request days overlapping the
	// grant window.
	SumApproved(ctx context.Context, userID id.ID) (decimal.Decimal, error)
}

// Policy decides the approval chain for a request.
type Policy interface {
	Steps(ctx context.Context, req *LeaveRequest) ([]ApprovalStep, error)
}

// Service provides leave business logic.
type Service struct {
	grants     GrantRepository
	requests   RequestRepository
	policy     Policy
	txManager  tx.Manager
	requestSvc *domain.EntityService[*LeaveRequest]
}

// NewService creates a new leave service.
func NewService(grants GrantRepository, requests RequestRepository, policy Policy, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	return &Service{
		grants:    grants,
		requests:  requests,
		policy:    policy,
		txManager: txManager,
		requestSvc: domain.NewEntityService(domain.EntityServiceConfig[*LeaveRequest]{
			Repo:          requests,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: RequestType,
		}),
	}
}

// Requests exposes generic operations on leave requests.
func (s *Service) Requests() *domain.EntityService[*LeaveRequest] {
	return s.requestSvc
}

// ApplyGrant credits the user per EvaluateGrant for the given day.
// Idempotent: a second run for the same user and day is a no-op, so
// redelivered grant events cannot double-credit.
func (s *Service) ApplyGrant(ctx context.Context, userID id.ID, hiredAt, today time.Time) (*LeaveGrant, error) {
	spec := EvaluateGrant(hiredAt, today)
	if spec == nil {
		return nil, nil
	}

	var grant *LeaveGrant
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.grants.HasGrantOn(ctx, userID, dateOnly(today))
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		grant = NewLeaveGrant(userID, spec.Days, dateOnly(today), spec.ExpiresOn, spec.Reason)
		if err := grant.Validate(ctx); err != nil {
			return err
		}
		return s.grants.Create(ctx, grant)
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// Balance returns unexpired grant days minus approved request days.
func (s *Service) Balance(ctx context.Context, userID id.ID, asOf time.Time) (decimal.Decimal, error) {
	granted, err := s.grants.SumUnexpired(ctx, userID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	used, err := s.requests.SumApproved(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return granted.Sub(used), nil
}

// SubmitRequest validates the balance, resolves the approval chain from the
// policy and stores the pending request.
func (s *Service) SubmitRequest(ctx context.Context, req *LeaveRequest) error {
	if err := req.Validate(ctx); err != nil {
		return err
	}

	balance, err := s.Balance(ctx, req.UserID, req.StartsOn)
	if err != nil {
		return err
	}
	if balance.LessThan(req.Days) {
		return apperror.NewValidation("insufficient leave balance").
			WithDetail("balance", balance.String()).
			WithDetail("requested", req.Days.String())
	}

	steps, err := s.policy.Steps(ctx, req)
	if err != nil {
		return err
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return apperror.NewInternal(err)
	}
	req.Steps = stepsJSON

	return s.requestSvc.Create(ctx, req)
}
