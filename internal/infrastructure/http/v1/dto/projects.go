package dto

import (
	"time"

	"pms/internal/domain/projects"
)

// CreateProjectRequest creates a project.
type CreateProjectRequest struct {
	Code      string     `json:"code" binding:"required"`
	Name      string     `json:"name" binding:"required"`
	CompanyID *string    `json:"companyId"`
	StartsOn  *time.Time `json:"startsOn"`
	EndsOn    *time.Time `json:"endsOn"`
}

// UpdateProjectRequest updates mutable project fields.
type UpdateProjectRequest struct {
	Name     string     `json:"name" binding:"required"`
	Status   string     `json:"status" binding:"required"`
	StartsOn *time.Time `json:"startsOn"`
	EndsOn   *time.Time `json:"endsOn"`
	Version  int        `json:"version" binding:"required"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	BaseResponse
	CompanyID *string    `json:"companyId,omitempty"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Status    string     `json:"status"`
	StartsOn  *time.Time `json:"startsOn,omitempty"`
	EndsOn    *time.Time `json:"endsOn,omitempty"`
}

// FromProject maps a project entity to its response.
func FromProject(p *projects.Project) ProjectResponse {
	resp := ProjectResponse{
		BaseResponse: FromBase(p.Base),
		Name:         p.Name,
		Code:         p.Code,
		Status:       string(p.Status),
		StartsOn:     p.StartsOn,
		EndsOn:       p.EndsOn,
	}
	if p.CompanyID != nil {
		s := p.CompanyID.String()
		resp.CompanyID = &s
	}
	return resp
}

// FromProjects maps a slice of project entities.
func FromProjects(items []*projects.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromProject(p))
	}
	return out
}
