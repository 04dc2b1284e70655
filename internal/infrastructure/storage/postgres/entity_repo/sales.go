package entity_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pms/internal/core/id"
	"pms/internal/domain/sales"
	"pms/internal/infrastructure/storage/postgres"
)

// SalesRepo implements sales.Repository.
type SalesRepo struct {
	*BaseRepo[*sales.ProjectSales]
}

// NewSalesRepo creates a new sales repository.
func NewSalesRepo(txManager *postgres.TxManager) *SalesRepo {
	return &SalesRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"project_sales",
			postgres.ExtractDBColumns[sales.ProjectSales](),
			nil,
			func() *sales.ProjectSales { return &sales.ProjectSales{} },
		),
	}
}

// GetLiveByProject returns the live sales record of a project.
func (r *SalesRepo) GetLiveByProject(ctx context.Context, projectID id.ID) (*sales.ProjectSales, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[sales.ProjectSales]()...).
		From("project_sales").
		Where(squirrel.Eq{"project_id": projectID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)
	return r.FindOne(ctx, q)
}

// SalesAssigneeRepo implements sales.AssigneeRepository.
type SalesAssigneeRepo struct {
	*BaseRepo[*sales.SalesAssignee]
}

// NewSalesAssigneeRepo creates a new sales assignee repository.
func NewSalesAssigneeRepo(txManager *postgres.TxManager) *SalesAssigneeRepo {
	return &SalesAssigneeRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"sales_assignees",
			postgres.ExtractDBColumns[sales.SalesAssignee](),
			nil,
			func() *sales.SalesAssignee { return &sales.SalesAssignee{} },
		),
	}
}

// SalesHistoryRepo implements sales.HistoryRepository.
type SalesHistoryRepo struct {
	*BaseRepo[*sales.SalesHistory]
}

// NewSalesHistoryRepo creates a new sales history repository.
func NewSalesHistoryRepo(txManager *postgres.TxManager) *SalesHistoryRepo {
	return &SalesHistoryRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"sales_histories",
			postgres.ExtractDBColumns[sales.SalesHistory](),
			nil,
			func() *sales.SalesHistory { return &sales.SalesHistory{} },
		),
	}
}
