package entity_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pms/internal/core/id"
	"pms/internal/domain/designs"
	"pms/internal/infrastructure/storage/postgres"
)

// DesignRepo implements designs.Repository.
type DesignRepo struct {
	*BaseRepo[*designs.ProjectDesign]
}

// NewDesignRepo creates a new design repository.
func NewDesignRepo(txManager *postgres.TxManager) *DesignRepo {
	return &DesignRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"project_designs",
			postgres.ExtractDBColumns[designs.ProjectDesign](),
			nil,
			func() *designs.ProjectDesign { return &designs.ProjectDesign{} },
		),
	}
}

// GetLiveByProject returns the live design record of a project.
func (r *DesignRepo) GetLiveByProject(ctx context.Context, projectID id.ID) (*designs.ProjectDesign, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[designs.ProjectDesign]()...).
		From("project_designs").
		Where(squirrel.Eq{"project_id": projectID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)
	return r.FindOne(ctx, q)
}

// DesignVersionRepo implements designs.VersionRepository.
type DesignVersionRepo struct {
	*BaseRepo[*designs.DesignVersion]
}

// NewDesignVersionRepo creates a new design version repository.
func NewDesignVersionRepo(txManager *postgres.TxManager) *DesignVersionRepo {
	return &DesignVersionRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"design_versions",
			postgres.ExtractDBColumns[designs.DesignVersion](),
			[]string{"label"},
			func() *designs.DesignVersion { return &designs.DesignVersion{} },
		),
	}
}

// DesignAssigneeRepo implements designs.AssigneeRepository.
type DesignAssigneeRepo struct {
	*BaseRepo[*designs.DesignAssignee]
}

// NewDesignAssigneeRepo creates a new design assignee repository.
func NewDesignAssigneeRepo(txManager *postgres.TxManager) *DesignAssigneeRepo {
	return &DesignAssigneeRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"design_assignees",
			postgres.ExtractDBColumns[designs.DesignAssignee](),
			nil,
			func() *designs.DesignAssignee { return &designs.DesignAssignee{} },
		),
	}
}

// DesignHistoryRepo implements designs.HistoryRepository.
type DesignHistoryRepo struct {
	*BaseRepo[*designs.DesignHistory]
}

// NewDesignHistoryRepo creates a new design history repository.
func NewDesignHistoryRepo(txManager *postgres.TxManager) *DesignHistoryRepo {
	return &DesignHistoryRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"design_histories",
			postgres.ExtractDBColumns[designs.DesignHistory](),
			nil,
			func() *designs.DesignHistory { return &designs.DesignHistory{} },
		),
	}
}
