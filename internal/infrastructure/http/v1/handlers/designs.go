package handlers

import (
	"github.com/gin-gonic/gin"

	"pms/internal/domain/designs"
	"pms/internal/infrastructure/http/v1/dto"
)

// DesignHandler handles the design track of a project.
type DesignHandler struct {
	BaseHandler
	service *designs.Service
}

// NewDesignHandler creates a new design handler.
func NewDesignHandler(service *designs.Service) *DesignHandler {
	return &DesignHandler{service: service}
}

// GetByProject retrieves the live design record of a project.
// GET /v1/projects/:id/designs
func (h *DesignHandler) GetByProject(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.GetLiveByProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromDesign(d))
}

// Update updates a design record with optimistic locking. Each update
// appends a history snapshot in the same transaction.
// PUT /v1/designs/:id
func (h *DesignHandler) Update(c *gin.Context) {
	designID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDesignRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), designID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	d.Phase = designs.Phase(req.Phase)
	d.Version = req.Version

	if err := h.service.Update(c.Request.Context(), d); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromDesign(d))
}

// AddVersion appends a delivered revision to a design record.
// POST /v1/designs/:id/versions
func (h *DesignHandler) AddVersion(c *gin.Context) {
	designID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddDesignVersionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.AddVersion(c.Request.Context(), designID, req.Label, req.FileURL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.FromDesignVersion(v))
}
