package handlers

import (
	"github.com/gin-gonic/gin"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/domain/tasks"
	"pms/internal/infrastructure/http/v1/dto"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	BaseHandler
	service *tasks.Service
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(service *tasks.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create creates a task under a project.
// POST /v1/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := tasks.NewTask(projectID, req.Title)
	t.Description = req.Description
	t.DueOn = req.DueOn

	if err := h.service.Create(c.Request.Context(), t); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.FromTask(t))
}

// Get retrieves a task by ID.
// GET /v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromTask(t))
}

// ListByProject lists tasks under a project.
// GET /v1/projects/:id/tasks
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.ListByProject(c.Request.Context(), projectID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromTasks(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update updates a task with optimistic locking.
// PUT /v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	t.Title = req.Title
	t.Description = req.Description
	t.Status = tasks.Status(req.Status)
	t.DueOn = req.DueOn
	t.Version = req.Version

	if err := h.service.Update(c.Request.Context(), t); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromTask(t))
}

// Delete soft-deletes a task and propagates to its assignees.
// DELETE /v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	alreadyDeleted, err := h.service.Delete(c.Request.Context(), taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.DeleteResponse{Deleted: true, AlreadyDeleted: alreadyDeleted})
}

// Assign links a user to a task.
// POST /v1/tasks/:id/assignees
func (h *TaskHandler) Assign(c *gin.Context) {
	taskID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	userID, err := id.Parse(req.UserID)
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid userId").WithCause(err))
		return
	}

	assignee, err := h.service.Assign(c.Request.Context(), taskID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.IDResponse{ID: assignee.ID.String()})
}
