// Package sales provides the sales track of a project: one ProjectSales
// record per project, with assignees and a stage history.
package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// Stage is the sales pipeline stage.
type Stage string

const (
	StageLead       Stage = "lead"
	StageProposal   Stage = "proposal"
	StageNegotiated Stage = "negotiated"
	StageWon        Stage = "won"
	StageLost       Stage = "lost"
)

// ProjectSales represents the sales record of a project.
type ProjectSales struct {
	entity.Base

	ProjectID id.ID           `db:"project_id" json:"projectId"`
	Stage     Stage           `db:"stage" json:"stage"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Currency  string          `db:"currency" json:"currency"`
}

// NewProjectSales creates the initial sales record for a project.
func NewProjectSales(projectID id.ID) *ProjectSales {
	return &ProjectSales{
		Base:      entity.NewBase(),
		ProjectID: projectID,
		Stage:     StageLead,
		Amount:    decimal.Zero,
		Currency:  "JPY",
	}
}

// Validate implements entity.Validatable interface.
func (s *ProjectSales) Validate(ctx context.Context) error {
	if id.IsNil(s.ProjectID) {
		return apperror.NewValidation("project is required").
			WithDetail("field", "projectId")
	}
	switch s.Stage {
	case StageLead, StageProposal, StageNegotiated, StageWon, StageLost:
	default:
		return apperror.NewValidation("invalid stage").
			WithDetail("field", "stage").
			WithDetail("value", string(s.Stage))
	}
	if s.Amount.IsNegative() {
		return apperror.NewValidation("amount cannot be negative").
			WithDetail("field", "amount")
	}
	if s.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}
	return nil
}

// SalesAssignee links a salesperson to a sales record.
type SalesAssignee struct {
	entity.Base

	SalesID id.ID `db:"sales_id" json:"salesId"`
	UserID  id.ID `db:"user_id" json:"userId"`
}

// NewSalesAssignee creates an assignment row.
func NewSalesAssignee(salesID, userID id.ID) *SalesAssignee {
	return &SalesAssignee{
		Base:    entity.NewBase(),
		SalesID: salesID,
		UserID:  userID,
	}
}

// Validate implements entity.Validatable interface.
func (a *SalesAssignee) Validate(ctx context.Context) error {
	if id.IsNil(a.SalesID) || id.IsNil(a.UserID) {
		return apperror.NewValidation("sales record and user are required")
	}
	return nil
}

// SalesHistory captures a stage or amount change.
type SalesHistory struct {
	entity.Base

	SalesID id.ID           `db:"sales_id" json:"salesId"`
	Note    string          `db:"note" json:"note"`
	Stage   Stage           `db:"stage" json:"stage"`
	Amount  decimal.Decimal `db:"amount" json:"amount"`
}

// NewSalesHistory snapshots the current state of a sales record.
func NewSalesHistory(s *ProjectSales, note string) *SalesHistory {
	return &SalesHistory{
		Base:    entity.NewBase(),
		SalesID: s.ID,
		Note:    note,
		Stage:   s.Stage,
		Amount:  s.Amount,
	}
}

// Validate implements entity.Validatable interface.
func (h *SalesHistory) Validate(ctx context.Context) error {
	if id.IsNil(h.SalesID) {
		return apperror.NewValidation("sales record is required")
	}
	return nil
}
