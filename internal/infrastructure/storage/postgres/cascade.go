package postgres

import (
	"context"
	"fmt"
	"time"

	"pms/internal/outbox"
)

var _ outbox.CascadeStore = (*CascadeRepo)(nil)

// CascadeRepo performs the batch soft-delete writes of a cascade. Table and
// column names come from the relation registry, which validates identifiers
// at registration, so string interpolation here is safe.
type CascadeRepo struct {
	txManager *TxManager
}

// NewCascadeRepo creates a new cascade store.
func NewCascadeRepo(txManager *TxManager) *CascadeRepo {
	return &CascadeRepo{txManager: txManager}
}

// Exists reports whether the aggregate row is still present, deleted or not.
// A missing row means the aggregate was hard-deleted out of band.
func (r *CascadeRepo) Exists(ctx context.Context, table string, aggregateID string) (bool, error) {
	querier := r.txManager.GetQuerier(ctx)
	var exists bool
	err := querier.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table),
		aggregateID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check aggregate exists in %s: %w", table, err)
	}
	return exists, nil
}

// SoftDeleteChildren marks all live children of parentID deleted in one
// statement and returns their ids. Rows already carrying a deleted_at keep
// their original timestamp: the filter skips them entirely, so a cascade
// never overwrites an earlier deletion.
func (r *CascadeRepo) SoftDeleteChildren(ctx context.Context, rel outbox.Relation, parentID string, now time.Time) ([]string, error) {
	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, updated_at = $1
		WHERE %s = $2 AND deleted_at IS NULL
		RETURNING id
	`, rel.Table, rel.FKColumn), now, parentID)
	if err != nil {
		return nil, fmt.Errorf("soft delete %s children of %s: %w", rel.Table, parentID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var childID string
		if err := rows.Scan(&childID); err != nil {
			return nil, fmt.Errorf("scan deleted child id: %w", err)
		}
		ids = append(ids, childID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted children: %w", err)
	}
	return ids, nil
}
