// Package tasks provides project tasks and their assignees.
package tasks

import (
	"context"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// Status is the task workflow state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Task represents a unit of project work.
type Task struct {
	entity.Base

	ProjectID   id.ID  `db:"project_id" json:"projectId"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Status      Status `db:"status" json:"status"`

	// DueOn is the optional deadline
	DueOn *time.Time `db:"due_on" json:"dueOn,omitempty"`
}

// NewTask creates a new open Task.
func NewTask(projectID id.ID, title string) *Task {
	return &Task{
		Base:      entity.NewBase(),
		ProjectID: projectID,
		Title:     title,
		Status:    StatusOpen,
	}
}

// Validate implements entity.Validatable interface.
func (t *Task) Validate(ctx context.Context) error {
	if id.IsNil(t.ProjectID) {
		return apperror.NewValidation("project is required").
			WithDetail("field", "projectId")
	}
	if t.Title == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title")
	}
	switch t.Status {
	case StatusOpen, StatusInProgress, StatusDone:
	default:
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(t.Status))
	}
	return nil
}

// TaskAssignee links a user to a task.
type TaskAssignee struct {
	entity.Base

	TaskID id.ID `db:"task_id" json:"taskId"`
	UserID id.ID `db:"user_id" json:"userId"`
}

// NewTaskAssignee creates an assignment row.
func NewTaskAssignee(taskID, userID id.ID) *TaskAssignee {
	return &TaskAssignee{
		Base:   entity.NewBase(),
		TaskID: taskID,
		UserID: userID,
	}
}

// Validate implements entity.Validatable interface.
func (a *TaskAssignee) Validate(ctx context.Context) error {
	if id.IsNil(a.TaskID) || id.IsNil(a.UserID) {
		return apperror.NewValidation("task and user are required")
	}
	return nil
}
