package dto

import (
	"pms/internal/domain/designs"
)

// UpdateDesignRequest updates the design record of a project.
type UpdateDesignRequest struct {
	Phase   string `json:"phase" binding:"required"`
	Version int    `json:"version" binding:"required"`
}

// AddDesignVersionRequest appends a delivered revision.
type AddDesignVersionRequest struct {
	Label   string `json:"label" binding:"required"`
	FileURL string `json:"fileUrl"`
}

// DesignResponse is the public view of a design record.
type DesignResponse struct {
	BaseResponse
	ProjectID string `json:"projectId"`
	Phase     string `json:"phase"`
}

// DesignVersionResponse is the public view of a design revision.
type DesignVersionResponse struct {
	BaseResponse
	DesignID string `json:"designId"`
	Label    string `json:"label"`
	FileURL  string `json:"fileUrl"`
}

// FromDesign maps a design record to its response.
func FromDesign(d *designs.ProjectDesign) DesignResponse {
	return DesignResponse{
		BaseResponse: FromBase(d.Base),
		ProjectID:    d.ProjectID.String(),
		Phase:        string(d.Phase),
	}
}

// FromDesignVersion maps a design revision to its response.
func FromDesignVersion(v *designs.DesignVersion) DesignVersionResponse {
	return DesignVersionResponse{
		BaseResponse: FromBase(v.Base),
		DesignID:     v.DesignID.String(),
		Label:        v.Label,
		FileURL:      v.FileURL,
	}
}
