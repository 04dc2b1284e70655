package designs

import (
	"context"

	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/internal/domain"
	"pms/internal/outbox"
)

// Registry type names for the design subtree.
const (
	AggregateType = "project_design"
	VersionType   = "design_version"
	AssigneeType  = "design_assignee"
	HistoryType   = "design_history"
)

// Repository defines storage operations for design records.
type Repository interface {
	domain.Repository[*ProjectDesign]

	// GetLiveByProject returns the live design record of a project, if any.
	GetLiveByProject(ctx context.Context, projectID id.ID) (*ProjectDesign, error)
}

// VersionRepository defines storage operations for design versions.
type VersionRepository interface {
	domain.Repository[*DesignVersion]
}

// AssigneeRepository defines storage operations for design assignees.
type AssigneeRepository interface {
	domain.Repository[*DesignAssignee]
}

// HistoryRepository defines storage operations for design histories.
type HistoryRepository interface {
	domain.Repository[*DesignHistory]
}

// Service provides design business logic. Every update appends a history
// snapshot in the same transaction.
type Service struct {
	*domain.EntityService[*ProjectDesign]
	repo      Repository
	versions  VersionRepository
	histories HistoryRepository
	txManager tx.Manager
}

// NewService creates a new design service.
func NewService(repo Repository, versions VersionRepository, histories HistoryRepository, txManager tx.Manager, publisher *outbox.Publisher) *Service {
	s := &Service{
		EntityService: domain.NewEntityService(domain.EntityServiceConfig[*ProjectDesign]{
			Repo:          repo,
			TxManager:     txManager,
			Publisher:     publisher,
			AggregateType: AggregateType,
		}),
		repo:      repo,
		versions:  versions,
		histories: histories,
		txManager: txManager,
	}

	s.Hooks().On(domain.AfterUpdate, func(ctx context.Context, rec *ProjectDesign) error {
		return histories.Create(ctx, NewDesignHistory(rec, "updated"))
	})
	return s
}

// GetLiveByProject returns the live design record of a project.
func (s *Service) GetLiveByProject(ctx context.Context, projectID id.ID) (*ProjectDesign, error) {
	return s.repo.GetLiveByProject(ctx, projectID)
}

// AddVersion appends a delivered revision to the design record.
func (s *Service) AddVersion(ctx context.Context, designID id.ID, label, fileURL string) (*DesignVersion, error) {
	v := NewDesignVersion(designID, label)
	v.FileURL = fileURL
	if err := v.Validate(ctx); err != nil {
		return nil, err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.versions.Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
