package sales

import (
	"context"

	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// Registry type names for the sales subtree.
const (
	AggregateType = "project_sales"
	AssigneeType  = "sales_assignee"
	HistoryType   = "sales_history"
)

// Repository defines storage operations for sales records.
type Repository interface {
	domain.Repository[*ProjectSales]

	// GetLiveByProject returns the live sales record of a project, if any.
	GetLiveByProject(ctx context.Context, projectID id.ID) (*ProjectSales, error)
}

// AssigneeRepository defines storage operations for sales assignees.
type AssigneeRepository interface {
	domain.Repository[*SalesAssignee]
}

// HistoryRepository defines storage operations for sales histories.
type HistoryRepository interface {
	domain.Repository[*SalesHistory]
}

// Service provides sales business logic. Every update appends a history
// snapshot in the same transaction.
type Service struct {
	*domain.EntityService[*ProjectSales]
	repo      Repository
	histories HistoryRepository
}

// NewService creates a new sales service.
func NewService(repo Repository, histories HistoryRepository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	s := &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*ProjectSales]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
		repo:      repo,
		histories: histories,
	}

	s.Hooks().On(domain.AfterUpdate, func(ctx context.Context, rec *ProjectSales) error {
		return histories.Create(ctx, NewSalesHistory(rec, "updated"))
	})
	return s
}

// GetLiveByProject returns the live sales record of a project.
func (s *Service) GetLiveByProject(ctx context.Context, projectID id.ID) (*ProjectSales, error) {
	return s.repo.GetLiveByProject(ctx, projectID)
}
