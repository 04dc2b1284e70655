package entity_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pms/internal/core/id"
	"pms/internal/domain/leaves"
	"pms/internal/infrastructure/storage/postgres"
)

// LeaveGrantRepo implements leaves.GrantRepository.
type LeaveGrantRepo struct {
	*BaseRepo[*leaves.LeaveGrant]
	txManager *postgres.TxManager
}

// NewLeaveGrantRepo creates a new leave grant repository.
func NewLeaveGrantRepo(txManager *postgres.TxManager) *LeaveGrantRepo {
	return &LeaveGrantRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"leave_grants",
			postgres.ExtractDBColumns[leaves.LeaveGrant](),
			nil,
			func() *leaves.LeaveGrant { return &leaves.LeaveGrant{} },
		),
		txManager: txManager,
	}
}

// HasGrantOn reports whether a live grant exists for the user on the date.
func (r *LeaveGrantRepo) HasGrantOn(ctx context.Context, userID id.ID, grantedOn time.Time) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From("leave_grants").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"granted_on": grantedOn}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check grant exists: %w", err)
	}
	return true, nil
}

// SumUnexpired totals live grant days not yet expired as of a date.
func (r *LeaveGrantRepo) SumUnexpired(ctx context.Context, userID id.ID, asOf time.Time) (decimal.Decimal, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(SUM(days), 0)").
		From("leave_grants").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Where(squirrel.GtOrEq{"expires_on": asOf}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}

	var total decimal.Decimal
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum grants: %w", err)
	}
	return total, nil
}

// LeaveRequestRepo implements leaves.RequestRepository.
type LeaveRequestRepo struct {
	*BaseRepo[*leaves.LeaveRequest]
	txManager *postgres.TxManager
}

// NewLeaveRequestRepo creates a new leave request repository.
func NewLeaveRequestRepo(txManager *postgres.TxManager) *LeaveRequestRepo {
	return &LeaveRequestRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"leave_requests",
			postgres.ExtractDBColumns[leaves.LeaveRequest](),
			nil,
			func() *leaves.LeaveRequest { return &leaves.LeaveRequest{} },
		),
		txManager: txManager,
	}
}

// SumApproved totals the days of live approved requests.
func (r *LeaveRequestRepo) SumApproved(ctx context.Context, userID id.ID) (decimal.Decimal, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(SUM(days), 0)").
		From("leave_requests").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"status": leaves.RequestApproved}).
		Where(squirrel.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}

	var total decimal.Decimal
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum approved requests: %w", err)
	}
	return total, nil
}
