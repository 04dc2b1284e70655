package projects

import (
	"context"

	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// Registry type names for the project subtree.
const (
	AggregateType = "project"
	MethodType    = "project_method"
)

// Repository defines storage operations for projects.
type Repository interface {
	domain.Repository[*Project]

	// GetByCode retrieves a live project by code.
	GetByCode(ctx context.Context, code string) (*Project, error)
}

// MethodRepository defines storage operations for project methods.
type MethodRepository interface {
	domain.Repository[*ProjectMethod]
}

// Service provides project business logic. Creating a project enqueues a
// project.created event in the same transaction; the worker fans it out into
// the default sales and design records.
type Service struct {
	*domain.EntityService[*Project]
	repo Repository
}

// NewService creates a new project service.
func NewService(repo Repository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	s := &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*Project]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
		repo: repo,
	}

	if publisher != nil {
		s.Hooks().On(domain.AfterCreate, func(ctx context.Context, p *Project) error {
			_, err := publisher.Publish(ctx, outbox.EventProjectCreated, AggregateType, p.ID.String(), nil)
			return err
		})
	}
	return s
}

// GetByCode retrieves a live project by code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Project, error) {
	return s.repo.GetByCode(ctx, code)
}
