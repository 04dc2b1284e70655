package entity_repo

import (
	"pms/internal/domain/tasks"
	"pms/internal/infrastructure/storage/postgres"
)

// TaskRepo implements tasks.Repository.
type TaskRepo struct {
	*BaseRepo[*tasks.Task]
}

// NewTaskRepo creates a new task repository.
func NewTaskRepo(txManager *postgres.TxManager) *TaskRepo {
	return &TaskRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"tasks",
			postgres.ExtractDBColumns[tasks.Task](),
			[]string{"title", "description"},
			func() *tasks.Task { return &tasks.Task{} },
		),
	}
}

// TaskAssigneeRepo implements tasks.AssigneeRepository.
type TaskAssigneeRepo struct {
	*BaseRepo[*tasks.TaskAssignee]
}

// NewTaskAssigneeRepo creates a new task assignee repository.
func NewTaskAssigneeRepo(txManager *postgres.TxManager) *TaskAssigneeRepo {
	return &TaskAssigneeRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"task_assignees",
			postgres.ExtractDBColumns[tasks.TaskAssignee](),
			nil,
			func() *tasks.TaskAssignee { return &tasks.TaskAssignee{} },
		),
	}
}
