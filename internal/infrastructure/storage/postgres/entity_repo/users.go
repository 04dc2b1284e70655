package entity_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pms/internal/core/apperror"
	"pms/internal/domain/users"
	"pms/internal/infrastructure/storage/postgres"
)

// UserRepo implements users.Repository.
type UserRepo struct {
	*BaseRepo[*users.User]
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"users",
			postgres.ExtractDBColumns[users.User](),
			[]string{"email", "display_name"},
			func() *users.User { return &users.User{} },
		),
		txManager: txManager,
	}
}

// GetByEmail retrieves a live user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[users.User]()...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)

	u, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, err
	}
	return u, nil
}

// ListActiveHired returns active live users with a hire date.
func (r *UserRepo) ListActiveHired(ctx context.Context) ([]*users.User, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[users.User]()...).
		From("users").
		Where(squirrel.Eq{"deleted_at": nil}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.NotEq{"hired_at": nil}).
		OrderBy("hired_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*users.User
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active hired users: %w", err)
	}
	return items, nil
}
