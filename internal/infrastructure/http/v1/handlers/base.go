// Package handlers provides HTTP request handlers for the v1 API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
)

// BaseHandler provides common handler functionality.
type BaseHandler struct{}

// BindJSON binds the JSON request body, converting binding failures into
// validation errors for the error middleware.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return false
	}
	return true
}

// BindQuery binds query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		_ = c.Error(apperror.NewValidation("invalid query parameters").WithCause(err))
		return false
	}
	return true
}

// ParseID parses a path parameter as an entity ID.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	raw := c.Param(param)
	parsed, err := id.Parse(raw)
	if err != nil {
		_ = c.Error(apperror.NewValidation("invalid id: " + raw).WithCause(err))
		return id.ID{}, false
	}
	return parsed, true
}

// HandleError passes an error to the error middleware.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK responds with 200 and the given body.
func (h *BaseHandler) OK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// Created responds with 201 and the given body.
func (h *BaseHandler) Created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

// NoContent responds with 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
