package dto

import (
	"pms/internal/domain/sales"
)

// UpdateSalesRequest updates the sales record of a project.
type UpdateSalesRequest struct {
	Stage    string `json:"stage" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Version  int    `json:"version" binding:"required"`
}

// SalesResponse is the public view of a sales record.
type SalesResponse struct {
	BaseResponse
	ProjectID string `json:"projectId"`
	Stage     string `json:"stage"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// FromSales maps a sales record to its response.
func FromSales(s *sales.ProjectSales) SalesResponse {
	return SalesResponse{
		BaseResponse: FromBase(s.Base),
		ProjectID:    s.ProjectID.String(),
		Stage:        string(s.Stage),
		Amount:       s.Amount.String(),
		Currency:     s.Currency,
	}
}
