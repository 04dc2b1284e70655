package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pms/internal/core/apperror"
	"pms/internal/domain/sales"
	"pms/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles the sales track of a project.
type SalesHandler struct {
	BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(service *sales.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

// GetByProject retrieves the live sales record of a project.
// GET /v1/projects/:id/sales
func (h *SalesHandler) GetByProject(c *gin.Context) {
	projectID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetLiveByProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromSales(s))
}

// Update updates a sales record with optimistic locking. Each update
// appends a history snapshot in the same transaction.
// PUT /v1/sales/:id
func (h *SalesHandler) Update(c *gin.Context) {
	salesID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSalesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid amount").WithCause(err))
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), salesID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	s.Stage = sales.Stage(req.Stage)
	s.Amount = amount
	s.Currency = req.Currency
	s.Version = req.Version

	if err := h.service.Update(c.Request.Context(), s); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromSales(s))
}
