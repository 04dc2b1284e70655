// Package projects provides the Project aggregate, the root of the
// propagation graph.
package projects

import (
	"context"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// Status is the project lifecycle stage.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
)

// Project represents a customer project.
type Project struct {
	entity.Base

	// CompanyID is the client organization, optional
	CompanyID *id.ID `db:"company_id" json:"companyId,omitempty"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Code is a unique short identifier
	Code string `db:"code" json:"code"`

	// Status is the lifecycle stage
	Status Status `db:"status" json:"status"`

	// StartsOn / EndsOn bound the project schedule
	StartsOn *time.Time `db:"starts_on" json:"startsOn,omitempty"`
	EndsOn   *time.Time `db:"ends_on" json:"endsOn,omitempty"`
}

// NewProject creates a new draft Project.
func NewProject(code, name string) *Project {
	return &Project{
		Base:   entity.NewBase(),
		Name:   name,
		Code:   code,
		Status: StatusDraft,
	}
}

// Validate implements entity.Validatable interface.
func (p *Project) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if !isValidStatus(p.Status) {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}
	if p.StartsOn != nil && p.EndsOn != nil && p.EndsOn.Before(*p.StartsOn) {
		return apperror.NewValidation("end date precedes start date").
			WithDetail("field", "endsOn")
	}
	return nil
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// ProjectMethod is a work method attached to a project.
type ProjectMethod struct {
	entity.Base

	ProjectID id.ID  `db:"project_id" json:"projectId"`
	Name      string `db:"name" json:"name"`
}

// NewProjectMethod creates a method row for a project.
func NewProjectMethod(projectID id.ID, name string) *ProjectMethod {
	return &ProjectMethod{
		Base:      entity.NewBase(),
		ProjectID: projectID,
		Name:      name,
	}
}

// Validate implements entity.Validatable interface.
func (m *ProjectMethod) Validate(ctx context.Context) error {
	if id.IsNil(m.ProjectID) {
		return apperror.NewValidation("project is required").
			WithDetail("field", "projectId")
	}
	if m.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
