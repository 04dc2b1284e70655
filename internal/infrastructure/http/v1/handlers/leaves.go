package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pms/internal/core/apperror"
	appctx "pms/internal/core/context"
	"pms/internal/core/id"
	"pms/internal/domain/leaves"
	"pms/internal/infrastructure/http/v1/dto"
)

// LeaveHandler handles leave request and balance endpoints.
type LeaveHandler struct {
	BaseHandler
	service *leaves.Service
}

// NewLeaveHandler creates a new leave handler.
func NewLeaveHandler(service *leaves.Service) *LeaveHandler {
	return &LeaveHandler{service: service}
}

// Submit files a leave request for the authenticated user. The approval
// chain is resolved from policy rules at submission time.
// POST /v1/leaves/requests
func (h *LeaveHandler) Submit(c *gin.Context) {
	var req dto.SubmitLeaveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	days, err := decimal.NewFromString(req.Days)
	if err != nil {
		h.HandleError(c, apperror.NewValidation("days must be a decimal number").WithCause(err))
		return
	}

	lr := leaves.NewLeaveRequest(userID, req.StartsOn, req.EndsOn, days, req.IsHalfDay)
	if err := h.service.SubmitRequest(c.Request.Context(), lr); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.IDResponse{ID: lr.ID.String()})
}

// Balance returns the authenticated user's remaining leave days:
// unexpired grants minus approved requests.
// GET /v1/leaves/balance
func (h *LeaveHandler) Balance(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	balance, err := h.service.Balance(c.Request.Context(), userID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.LeaveBalanceResponse{
		UserID:  userID.String(),
		Balance: balance.String(),
		AsOf:    asOf.Format("2006-01-02"),
	})
}

func (h *LeaveHandler) currentUserID(c *gin.Context) (id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.HandleError(c, apperror.NewUnauthorized("authentication required"))
		return id.ID{}, false
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.HandleError(c, apperror.NewUnauthorized("invalid user context").WithCause(err))
		return id.ID{}, false
	}
	return userID, true
}
