// Package company provides the Company catalog.
package company

import (
	"context"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
)

// Company represents a client or partner organization.
// Companies are never cascade targets: projects reference a company but
// outlive its deletion.
type Company struct {
	entity.Base

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Code is a unique short identifier
	Code string `db:"code" json:"code"`
}

// NewCompany creates a new Company with required fields.
func NewCompany(code, name string) *Company {
	return &Company{
		Base: entity.NewBase(),
		Name: name,
		Code: code,
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	return nil
}
