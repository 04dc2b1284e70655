// Package designs provides the design track of a project: one ProjectDesign
// record per project, with versions, assignees and a phase history.
package designs

import (
	"context"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// Phase is the design workflow phase.
type Phase string

const (
	PhaseConcept  Phase = "concept"
	PhaseDrafting Phase = "drafting"
	PhaseReview   Phase = "review"
	PhaseApproved Phase = "approved"
)

// ProjectDesign represents the design record of a project.
type ProjectDesign struct {
	entity.Base

	ProjectID id.ID `db:"project_id" json:"projectId"`
	Phase     Phase `db:"phase" json:"phase"`
}

// NewProjectDesign creates the initial design record for a project.
func NewProjectDesign(projectID id.ID) *ProjectDesign {
	return &ProjectDesign{
		Base:      entity.NewBase(),
		ProjectID: projectID,
		Phase:     PhaseConcept,
	}
}

// Validate implements entity.Validatable interface.
func (d *ProjectDesign) Validate(ctx context.Context) error {
	if id.IsNil(d.ProjectID) {
		return apperror.NewValidation("project is required").
			WithDetail("field", "projectId")
	}
	switch d.Phase {
	case PhaseConcept, PhaseDrafting, PhaseReview, PhaseApproved:
	default:
		return apperror.NewValidation("invalid phase").
			WithDetail("field", "phase").
			WithDetail("value", string(d.Phase))
	}
	return nil
}

// DesignVersion is one delivered revision of the design.
type DesignVersion struct {
	entity.Base

	DesignID id.ID  `db:"design_id" json:"designId"`
	Label    string `db:"label" json:"label"`
	FileURL  string `db:"file_url" json:"fileUrl"`
}

// NewDesignVersion creates a version row.
func NewDesignVersion(designID id.ID, label string) *DesignVersion {
	return &DesignVersion{
		Base:     entity.NewBase(),
		DesignID: designID,
		Label:    label,
	}
}

// Validate implements entity.Validatable interface.
func (v *DesignVersion) Validate(ctx context.Context) error {
	if id.IsNil(v.DesignID) {
		return apperror.NewValidation("design is required")
	}
	if v.Label == "" {
		return apperror.NewValidation("label is required").
			WithDetail("field", "label")
	}
	return nil
}

// DesignAssignee links a designer to a design record.
type DesignAssignee struct {
	entity.Base

	DesignID id.ID `db:"design_id" json:"designId"`
	UserID   id.ID `db:"user_id" json:"userId"`
}

// NewDesignAssignee creates an assignment row.
func NewDesignAssignee(designID, userID id.ID) *DesignAssignee {
	return &DesignAssignee{
		Base:     entity.NewBase(),
		DesignID: designID,
		UserID:   userID,
	}
}

// Validate implements entity.Validatable interface.
func (a *DesignAssignee) Validate(ctx context.Context) error {
	if id.IsNil(a.DesignID) || id.IsNil(a.UserID) {
		return apperror.NewValidation("design and user are required")
	}
	return nil
}

// DesignHistory captures a phase change.
type DesignHistory struct {
	entity.Base

	DesignID id.ID  `db:"design_id" json:"designId"`
	Note     string `db:"note" json:"note"`
	Phase    Phase  `db:"phase" json:"phase"`
}

// NewDesignHistory snapshots the current phase of a design record.
func NewDesignHistory(d *ProjectDesign, note string) *DesignHistory {
	return &DesignHistory{
		Base:     entity.NewBase(),
		DesignID: d.ID,
		Note:     note,
		Phase:    d.Phase,
	}
}

// Validate implements entity.Validatable interface.
func (h *DesignHistory) Validate(ctx context.Context) error {
	if id.IsNil(h.DesignID) {
		return apperror.NewValidation("design is required")
	}
	return nil
}
