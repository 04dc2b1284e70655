package company

import (
	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// AggregateType is the registry type name for companies.
const AggregateType = "company"

// Repository defines storage operations for companies.
type Repository interface {
	domain.Repository[*Company]
}

// Service provides company business logic.
type Service struct {
	*domain.EntityService[*Company]
}

// NewService creates a new company service.
func NewService(repo Repository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	return &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*Company]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
	}
}
