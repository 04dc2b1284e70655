package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
	"pms/internal/outbox"
)

// --- test entity ---

type widget struct {
	entity.Base
	Name string `db:"name"`
}

func (w *widget) Validate(ctx context.Context) error {
	if w.Name == "" {
		return apperror.NewValidation("name is required")
	}
	return nil
}

func newWidget(name string) *widget {
	return &widget{Base: entity.NewBase(), Name: name}
}

// --- fakes ---

type stubTxKey struct{}

type stubTxState struct{ hooks []func(ctx context.Context) }

type stubTxManager struct{}

func (m *stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(stubTxKey{}) != nil {
		return fn(ctx)
	}
	state := &stubTxState{}
	ctx = context.WithValue(ctx, stubTxKey{}, state)
	if err := fn(ctx); err != nil {
		return err
	}
	for _, hook := range state.hooks {
		hook(ctx)
	}
	return nil
}

func (m *stubTxManager) OnCommit(ctx context.Context, fn func(ctx context.Context)) error {
	state, ok := ctx.Value(stubTxKey{}).(*stubTxState)
	if !ok {
		return errors.New("no active transaction")
	}
	state.hooks = append(state.hooks, fn)
	return nil
}

type widgetRepo struct {
	mu      sync.Mutex
	widgets map[id.ID]*widget
}

func newWidgetRepo() *widgetRepo {
	return &widgetRepo{widgets: make(map[id.ID]*widget)}
}

func (r *widgetRepo) Create(ctx context.Context, w *widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.widgets[w.ID] = w
	return nil
}

func (r *widgetRepo) GetByID(ctx context.Context, widgetID id.ID) (*widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[widgetID]
	if !ok {
		return nil, apperror.NewNotFound("widget", widgetID)
	}
	cp := *w
	return &cp, nil
}

func (r *widgetRepo) Update(ctx context.Context, w *widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.widgets[w.ID]; !ok {
		return apperror.NewNotFound("widget", w.ID)
	}
	w.Touch()
	r.widgets[w.ID] = w
	return nil
}

func (r *widgetRepo) SoftDelete(ctx context.Context, widgetID id.ID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[widgetID]
	if !ok || w.IsDeleted() {
		return false, nil
	}
	return w.MarkDeleted(now), nil
}

func (r *widgetRepo) Restore(ctx context.Context, widgetID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[widgetID]
	if !ok || !w.IsDeleted() {
		return false, nil
	}
	w.Base.Restore()
	return true, nil
}

func (r *widgetRepo) List(ctx context.Context, f ListFilter) (ListResult[*widget], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*widget
	for _, w := range r.widgets {
		if w.IsDeleted() && !f.IncludeDeleted {
			continue
		}
		cp := *w
		items = append(items, &cp)
	}
	return ListResult[*widget]{Items: items, TotalCount: int64(len(items)), Limit: f.Limit, Offset: f.Offset}, nil
}

func (r *widgetRepo) Exists(ctx context.Context, widgetID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[widgetID]
	return ok && !w.IsDeleted(), nil
}

// stubOutboxRepo records created ledger entries; Mark* are no-ops.
type stubOutboxRepo struct {
	mu      sync.Mutex
	created []*outbox.Event
}

func (r *stubOutboxRepo) Create(ctx context.Context, e *outbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, e)
	return nil
}

func (r *stubOutboxRepo) CreateBatch(ctx context.Context, events []*outbox.Event) error {
	for _, e := range events {
		if err := r.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubOutboxRepo) Get(ctx context.Context, eventID id.ID) (*outbox.Event, error) {
	return nil, apperror.NewNotFound("outbox_event", eventID)
}

func (r *stubOutboxRepo) MarkPublished(ctx context.Context, eventID id.ID, handle string) error {
	return nil
}
func (r *stubOutboxRepo) MarkProcessed(ctx context.Context, eventID id.ID) error { return nil }
func (r *stubOutboxRepo) MarkFailed(ctx context.Context, eventID id.ID, errMsg string, permanent bool) error {
	return nil
}
func (r *stubOutboxRepo) ClaimForProcessing(ctx context.Context, eventID id.ID) (bool, error) {
	return false, nil
}
func (r *stubOutboxRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*outbox.Event, error) {
	return nil, nil
}
func (r *stubOutboxRepo) ListStalePublished(ctx context.Context, cutoff time.Time, limit int) ([]*outbox.Event, error) {
	return nil, nil
}
func (r *stubOutboxRepo) ListRetryableFailed(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return nil, nil
}
func (r *stubOutboxRepo) ListExhausted(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return nil, nil
}

type stubQueue struct{}

func (q *stubQueue) Submit(ctx context.Context, eventID id.ID) (string, error) {
	return "stub:" + eventID.String(), nil
}

// --- fixtures ---

func newServiceFixture() (*EntityService[*widget], *widgetRepo, *stubOutboxRepo) {
	repo := newWidgetRepo()
	txm := &stubTxManager{}
	ledger := &stubOutboxRepo{}
	publisher := outbox.NewPublisher(ledger, txm, &stubQueue{})

	svc := NewEntityService(EntityServiceConfig[*widget]{
		Repo:          repo,
		TxManager:     txm,
		Publisher:     publisher,
		AggregateType: "widget",
	})
	return svc, repo, ledger
}

// --- tests ---

func TestEntityService_CreateValidates(t *testing.T) {
	svc, _, _ := newServiceFixture()

	err := svc.Create(t.Context(), newWidget(""))
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestEntityService_DeletePublishesPropagationEvent(t *testing.T) {
	svc, repo, ledger := newServiceFixture()
	w := newWidget("doomed")
	require.NoError(t, svc.Create(t.Context(), w))

	alreadyDeleted, err := svc.Delete(t.Context(), w.ID)
	require.NoError(t, err)
	assert.False(t, alreadyDeleted)

	stored, err := repo.GetByID(t.Context(), w.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted())

	require.Len(t, ledger.created, 1)
	event := ledger.created[0]
	assert.Equal(t, outbox.EventSoftDeletePropagate, event.EventType)
	assert.Equal(t, "widget", event.AggregateType)
	assert.Equal(t, w.ID.String(), event.AggregateID)
}

func TestEntityService_RepeatedDeleteIsNoOp(t *testing.T) {
	svc, _, ledger := newServiceFixture()
	w := newWidget("doomed")
	require.NoError(t, svc.Create(t.Context(), w))

	_, err := svc.Delete(t.Context(), w.ID)
	require.NoError(t, err)

	alreadyDeleted, err := svc.Delete(t.Context(), w.ID)
	require.NoError(t, err)
	assert.True(t, alreadyDeleted)

	// No second propagation event.
	assert.Len(t, ledger.created, 1)
}

func TestEntityService_DeleteMissingEntity(t *testing.T) {
	svc, _, _ := newServiceFixture()

	_, err := svc.Delete(t.Context(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEntityService_RestoreDoesNotPublish(t *testing.T) {
	svc, repo, ledger := newServiceFixture()
	w := newWidget("phoenix")
	require.NoError(t, svc.Create(t.Context(), w))

	_, err := svc.Delete(t.Context(), w.ID)
	require.NoError(t, err)
	require.Len(t, ledger.created, 1)

	require.NoError(t, svc.Restore(t.Context(), w.ID))

	stored, err := repo.GetByID(t.Context(), w.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted())

	// Restoration is never propagated.
	assert.Len(t, ledger.created, 1)
}

func TestEntityService_RestoreLiveEntityIsNoOp(t *testing.T) {
	svc, repo, _ := newServiceFixture()
	w := newWidget("alive")
	require.NoError(t, svc.Create(t.Context(), w))

	require.NoError(t, svc.Restore(t.Context(), w.ID))

	stored, err := repo.GetByID(t.Context(), w.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted())
}

func TestEntityService_AfterCreateHookRunsInTransaction(t *testing.T) {
	svc, _, ledger := newServiceFixture()

	svc.Hooks().On(AfterCreate, func(ctx context.Context, w *widget) error {
		_, err := svc.Publisher().Publish(ctx, "widget.created", "widget", w.ID.String(), nil)
		return err
	})

	w := newWidget("hooked")
	require.NoError(t, svc.Create(t.Context(), w))
	require.Len(t, ledger.created, 1)
	assert.Equal(t, "widget.created", ledger.created[0].EventType)
}

func TestEntityService_FailingHookAbortsCreate(t *testing.T) {
	svc, repo, _ := newServiceFixture()

	svc.Hooks().On(BeforeCreate, func(ctx context.Context, w *widget) error {
		return apperror.NewBusinessRule("widget_quota", "too many widgets")
	})

	w := newWidget("rejected")
	require.Error(t, svc.Create(t.Context(), w))

	_, err := repo.GetByID(t.Context(), w.ID)
	assert.True(t, apperror.IsNotFound(err))
}
