package dto

import (
	"time"

	"pms/internal/domain/tasks"
)

// CreateTaskRequest creates a task under a project.
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueOn       *time.Time `json:"dueOn"`
}

// UpdateTaskRequest updates mutable task fields.
type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"required"`
	DueOn       *time.Time `json:"dueOn"`
	Version     int        `json:"version" binding:"required"`
}

// AssignTaskRequest links a user to a task.
type AssignTaskRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	BaseResponse
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueOn       *time.Time `json:"dueOn,omitempty"`
}

// FromTask maps a task entity to its response.
func FromTask(t *tasks.Task) TaskResponse {
	return TaskResponse{
		BaseResponse: FromBase(t.Base),
		ProjectID:    t.ProjectID.String(),
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		DueOn:        t.DueOn,
	}
}

// FromTasks maps a slice of task entities.
func FromTasks(items []*tasks.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(items))
	for _, t := range items {
		out = append(out, FromTask(t))
	}
	return out
}
