package entity_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pms/internal/core/apperror"
	"pms/internal/domain/projects"
	"pms/internal/infrastructure/storage/postgres"
)

// ProjectRepo implements projects.Repository.
type ProjectRepo struct {
	*BaseRepo[*projects.Project]
}

// NewProjectRepo creates a new project repository.
func NewProjectRepo(txManager *postgres.TxManager) *ProjectRepo {
	return &ProjectRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"projects",
			postgres.ExtractDBColumns[projects.Project](),
			[]string{"name", "code"},
			func() *projects.Project { return &projects.Project{} },
		),
	}
}

// GetByCode retrieves a live project by code.
func (r *ProjectRepo) GetByCode(ctx context.Context, code string) (*projects.Project, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[projects.Project]()...).
		From("projects").
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("project", code)
		}
		return nil, err
	}
	return p, nil
}

// ProjectMethodRepo implements projects.MethodRepository.
type ProjectMethodRepo struct {
	*BaseRepo[*projects.ProjectMethod]
}

// NewProjectMethodRepo creates a new project method repository.
func NewProjectMethodRepo(txManager *postgres.TxManager) *ProjectMethodRepo {
	return &ProjectMethodRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"project_methods",
			postgres.ExtractDBColumns[projects.ProjectMethod](),
			[]string{"name"},
			func() *projects.ProjectMethod { return &projects.ProjectMethod{} },
		),
	}
}
