package users

import (
	"context"
	"time"

	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// AggregateType is the registry type name for users.
const AggregateType = "user"

// Repository defines storage operations for users.
type Repository interface {
	domain.Repository[*User]

	// GetByEmail retrieves a live user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListActiveHired returns active, live users with a hire date, for the
	// leave grant scheduler.
	ListActiveHired(ctx context.Context) ([]*User, error)
}

// Service provides user business logic.
type Service struct {
	*domain.EntityService[*User]
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	return &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*User]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
		repo: repo,
	}
}

// GetByEmail retrieves a live user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// ListActiveHired returns users eligible for leave grant evaluation.
func (s *Service) ListActiveHired(ctx context.Context) ([]*User, error) {
	return s.repo.ListActiveHired(ctx)
}

// YearsOfService returns full years between hire date and asOf.
func YearsOfService(hiredAt, asOf time.Time) int {
	years := asOf.Year() - hiredAt.Year()
	anniversary := hiredAt.AddDate(years, 0, 0)
	if anniversary.After(asOf) {
		years--
	}
	return years
}
