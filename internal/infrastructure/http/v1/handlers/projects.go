package handlers

import (
	"github.com/gin-gonic/gin"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/domain/projects"
	"pms/internal/infrastructure/http/v1/dto"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	BaseHandler
	service *projects.Service
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(service *projects.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create creates a project.
// POST /v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := projects.NewProject(req.Code, req.Name)
	p.StartsOn = req.StartsOn
	p.EndsOn = req.EndsOn
	if req.CompanyID != nil {
		companyID, err := id.Parse(*req.CompanyID)
		if err != nil {
			h.HandleError(c, apperror.NewValidation("invalid companyId").WithCause(err))
			return
		}
		p.CompanyID = &companyID
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.FromProject(p))
}

// Get retrieves a project by ID.
// GET /v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromProject(p))
}

// List lists projects with pagination and search.
// GET /v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromProjects(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update updates a project with optimistic locking.
// PUT /v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p.Name = req.Name
	p.Status = projects.Status(req.Status)
	p.StartsOn = req.StartsOn
	p.EndsOn = req.EndsOn
	p.Version = req.Version

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromProject(p))
}

// Delete soft-deletes a project. Descendant records are removed
// asynchronously by the propagation worker. Deleting an already deleted
// project succeeds without enqueueing another event.
// DELETE /v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	alreadyDeleted, err := h.service.Delete(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.DeleteResponse{Deleted: true, AlreadyDeleted: alreadyDeleted})
}

// Restore clears the deletion mark on the project itself. Descendants
// deleted by an earlier cascade stay deleted.
// POST /v1/projects/:id/restore
func (h *ProjectHandler) Restore(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), projectID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true})
}
