package handlers

import (
	"github.com/gin-gonic/gin"

	"pms/internal/domain/auth"
	"pms/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates by email and password and issues an access token.
// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		User: dto.UserResponse{
			BaseResponse: dto.FromBase(result.User.Base),
			Email:        result.User.Email,
			DisplayName:  result.User.DisplayName,
			Roles:        result.User.Roles,
			HiredAt:      result.User.HiredAt,
			IsActive:     result.User.IsActive,
		},
	})
}
