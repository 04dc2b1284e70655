// Package handlers implements the worker-side processing of domain events.
package handlers

import (
	"context"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/domain/designs"
	"pms/internal/domain/projects"
	"pms/internal/domain/sales"
	"pms/internal/outbox"
	"pms/pkg/logger"
)

// ProjectCreated fans a new project out into its default sales and design
// records. Idempotent: a redelivered event skips tracks that already have a
// live record, so duplicates cannot produce extra rows.
type ProjectCreated struct {
	projects projects.Repository
	sales    sales.Repository
	designs  designs.Repository
}

var _ outbox.Handler = (*ProjectCreated)(nil)

// NewProjectCreated creates the fan-out handler.
func NewProjectCreated(p projects.Repository, s sales.Repository, d designs.Repository) *ProjectCreated {
	return &ProjectCreated{projects: p, sales: s, designs: d}
}

// Handle runs inside the worker transaction.
func (h *ProjectCreated) Handle(ctx context.Context, event *outbox.Event) error {
	projectID, err := id.Parse(event.AggregateID)
	if err != nil {
		return apperror.NewAggregateGone(event.AggregateType, event.AggregateID).WithCause(err)
	}

	project, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewAggregateGone(event.AggregateType, event.AggregateID)
		}
		return err
	}
	if project.IsDeleted() {
		// Deleted before the fan-out ran; nothing to set up.
		logger.Debug(ctx, "project deleted before fan-out", "project_id", projectID)
		return nil
	}

	if _, err := h.sales.GetLiveByProject(ctx, projectID); err != nil {
		if !apperror.IsNotFound(err) {
			return err
		}
		if err := h.sales.Create(ctx, sales.NewProjectSales(projectID)); err != nil {
			return err
		}
	}

	if _, err := h.designs.GetLiveByProject(ctx, projectID); err != nil {
		if !apperror.IsNotFound(err) {
			return err
		}
		if err := h.designs.Create(ctx, designs.NewProjectDesign(projectID)); err != nil {
			return err
		}
	}

	return nil
}
