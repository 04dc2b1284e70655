package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/domain"
)

// --- fakes ---

type salesTxKey struct{}

type salesTxState struct{ hooks []func(ctx context.Context) }

type salesTxManager struct{}

func (m *salesTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(salesTxKey{}) != nil {
		return fn(ctx)
	}
	state := &salesTxState{}
	ctx = context.WithValue(ctx, salesTxKey{}, state)
	if err := fn(ctx); err != nil {
		return err
	}
	for _, hook := range state.hooks {
		hook(ctx)
	}
	return nil
}

func (m *salesTxManager) OnCommit(ctx context.Context, fn func(ctx context.Context)) error {
	state, ok := ctx.Value(salesTxKey{}).(*salesTxState)
	if !ok {
		return errors.New("no active transaction")
	}
	state.hooks = append(state.hooks, fn)
	return nil
}

type memRepo[T domain.Entity] struct {
	mu   sync.Mutex
	rows map[id.ID]T
}

func newMemRepo[T domain.Entity]() *memRepo[T] {
	return &memRepo[T]{rows: make(map[id.ID]T)}
}

func (r *memRepo[T]) Create(ctx context.Context, ent T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[ent.GetID()] = ent
	return nil
}

func (r *memRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.rows[entityID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound("sales", entityID)
	}
	return ent, nil
}

func (r *memRepo[T]) Update(ctx context.Context, ent T) error {
	return r.Create(ctx, ent)
}

func (r *memRepo[T]) SoftDelete(ctx context.Context, entityID id.ID, now time.Time) (bool, error) {
	ent, err := r.GetByID(ctx, entityID)
	if err != nil {
		return false, nil
	}
	return ent.MarkDeleted(now), nil
}

func (r *memRepo[T]) Restore(ctx context.Context, entityID id.ID) (bool, error) {
	ent, err := r.GetByID(ctx, entityID)
	if err != nil || !ent.IsDeleted() {
		return false, nil
	}
	ent.Restore()
	return true, nil
}

func (r *memRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[T]{Limit: f.Limit, Offset: f.Offset}
	for _, ent := range r.rows {
		out.Items = append(out.Items, ent)
		out.TotalCount++
	}
	return out, nil
}

func (r *memRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	ent, err := r.GetByID(ctx, entityID)
	return err == nil && !ent.IsDeleted(), nil
}

type fakeSalesRepo struct{ *memRepo[*ProjectSales] }

func (r *fakeSalesRepo) GetLiveByProject(ctx context.Context, projectID id.ID) (*ProjectSales, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.ProjectID == projectID && !s.IsDeleted() {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sales", projectID)
}

func salesFixture() (*Service, *fakeSalesRepo, *memRepo[*SalesHistory]) {
	repo := &fakeSalesRepo{newMemRepo[*ProjectSales]()}
	histories := newMemRepo[*SalesHistory]()
	svc := NewService(repo, histories, &salesTxManager{}, nil)
	return svc, repo, histories
}

// --- tests ---

func TestService_UpdateAppendsHistorySnapshot(t *testing.T) {
	svc, _, histories := salesFixture()
	ctx := context.Background()

	rec := NewProjectSales(id.New())
	require.NoError(t, svc.Create(ctx, rec))
	assert.Empty(t, histories.rows)

	rec.Stage = StageProposal
	rec.Amount = decimal.NewFromInt(500000)
	require.NoError(t, svc.Update(ctx, rec))

	require.Len(t, histories.rows, 1)
	for _, h := range histories.rows {
		assert.Equal(t, rec.ID, h.SalesID)
		assert.Equal(t, StageProposal, h.Stage)
		assert.True(t, h.Amount.Equal(decimal.NewFromInt(500000)))
		assert.Equal(t, "updated", h.Note)
	}

	rec.Stage = StageWon
	require.NoError(t, svc.Update(ctx, rec))
	assert.Len(t, histories.rows, 2)
}

func TestService_UpdateRejectsInvalidStage(t *testing.T) {
	svc, _, histories := salesFixture()
	ctx := context.Background()

	rec := NewProjectSales(id.New())
	require.NoError(t, svc.Create(ctx, rec))

	rec.Stage = Stage("bogus")
	err := svc.Update(ctx, rec)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
	assert.Empty(t, histories.rows)
}

func TestService_GetLiveByProject(t *testing.T) {
	svc, _, _ := salesFixture()
	ctx := context.Background()

	projectID := id.New()
	rec := NewProjectSales(projectID)
	require.NoError(t, svc.Create(ctx, rec))

	got, err := svc.GetLiveByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.GetLiveByProject(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}
