package tasks

import (
	"context"

	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/domain/filter"
	"pms/internal/outbox"
)

// Registry type names for the task subtree.
const (
	AggregateType = "task"
	AssigneeType  = "task_assignee"
)

// Repository defines storage operations for tasks.
type Repository interface {
	domain.Repository[*Task]
}

// AssigneeRepository defines storage operations for task assignees.
type AssigneeRepository interface {
	domain.Repository[*TaskAssignee]
}

// Service provides task business logic.
type Service struct {
	*domain.EntityService[*Task]
	assignees AssigneeRepository
	txManager tx.Manager
}

// NewService creates a new task service.
func NewService(repo Repository, assignees AssigneeRepository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	return &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*Task]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
		assignees: assignees,
		txManager: txManager,
	}
}

// Assign links a user to the task.
func (s *Service) Assign(ctx context.Context, taskID, userID id.ID) (*TaskAssignee, error) {
	assignee := NewTaskAssignee(taskID, userID)
	if err := assignee.Validate(ctx); err != nil {
		return nil, err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.assignees.Create(ctx, assignee)
	})
	if err != nil {
		return nil, err
	}
	return assignee, nil
}

// ListByProject returns live tasks of a project.
func (s *Service) ListByProject(ctx context.Context, projectID id.ID, f domain.ListFilter) (domain.ListResult[*Task], error) {
	f.AdvancedFilters = append(f.AdvancedFilters, filter.Item{
		Field:    "project_id",
		Operator: filter.Equal,
		Value:    projectID,
	})
	return s.List(ctx, f)
}
