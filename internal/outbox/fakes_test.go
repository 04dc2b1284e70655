package outbox

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
)

// --- fake transaction manager ---

type fakeTxKey struct{}

type fakeTxState struct {
	hooks []func(ctx context.Context)
}

// fakeTxManager executes fn immediately and runs commit hooks after fn
// succeeds, mirroring the postgres manager's contract.
type fakeTxManager struct {
	commits int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	state := &fakeTxState{}
	ctx = context.WithValue(ctx, fakeTxKey{}, state)
	if err := fn(ctx); err != nil {
		return err
	}
	m.commits++
	for _, hook := range state.hooks {
		hook(context.WithoutCancel(ctx))
	}
	return nil
}

func (m *fakeTxManager) OnCommit(ctx context.Context, fn func(ctx context.Context)) error {
	state, ok := ctx.Value(fakeTxKey{}).(*fakeTxState)
	if !ok {
		return errors.New("no active transaction")
	}
	state.hooks = append(state.hooks, fn)
	return nil
}

// --- fake ledger repository ---

// fakeRepo is an in-memory Repository with the same transition guards as the
// postgres implementation.
type fakeRepo struct {
	mu     sync.Mutex
	events map[id.ID]*Event

	failCreate error
	failMark   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[id.ID]*Event)}
}

func (r *fakeRepo) Create(ctx context.Context, event *Event) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeRepo) CreateBatch(ctx context.Context, events []*Event) error {
	for _, e := range events {
		if err := r.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, eventID id.ID) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return nil, apperror.NewNotFound("outbox_event", eventID)
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRepo) MarkPublished(ctx context.Context, eventID id.ID, handle string) error {
	if r.failMark != nil {
		return r.failMark
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok || e.Status == StatusProcessed {
		return nil
	}
	e.Status = StatusPublished
	e.DispatchHandle = &handle
	if e.PublishedAt == nil {
		now := time.Now().UTC()
		e.PublishedAt = &now
	}
	return nil
}

func (r *fakeRepo) MarkProcessed(ctx context.Context, eventID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return apperror.NewNotFound("outbox_event", eventID)
	}
	if e.Status == StatusProcessed {
		return nil
	}
	e.Status = StatusProcessed
	now := time.Now().UTC()
	e.ProcessedAt = &now
	return nil
}

func (r *fakeRepo) MarkFailed(ctx context.Context, eventID id.ID, errMsg string, permanent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok || e.Status == StatusProcessed {
		return nil
	}
	e.Status = StatusFailed
	e.ErrorMessage = &errMsg
	now := time.Now().UTC()
	e.LastErrorAt = &now
	if permanent {
		e.RetryCount = e.MaxRetries
	} else if e.RetryCount < e.MaxRetries {
		e.RetryCount++
	}
	return nil
}

func (r *fakeRepo) ClaimForProcessing(ctx context.Context, eventID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok || e.Status == StatusProcessed {
		return false, nil
	}
	return true, nil
}

func (r *fakeRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*Event, error) {
	return r.list(limit, func(e *Event) bool {
		return e.Status == StatusPending && e.PublishedAt == nil && e.CreatedAt.Before(cutoff)
	}), nil
}

func (r *fakeRepo) ListStalePublished(ctx context.Context, cutoff time.Time, limit int) ([]*Event, error) {
	return r.list(limit, func(e *Event) bool {
		return e.Status == StatusPublished && e.ProcessedAt == nil &&
			e.PublishedAt != nil && e.PublishedAt.Before(cutoff)
	}), nil
}

func (r *fakeRepo) ListRetryableFailed(ctx context.Context, limit int) ([]*Event, error) {
	return r.list(limit, func(e *Event) bool {
		return e.Status == StatusFailed && e.RetryCount < e.MaxRetries
	}), nil
}

func (r *fakeRepo) ListExhausted(ctx context.Context, limit int) ([]*Event, error) {
	return r.list(limit, func(e *Event) bool {
		return e.Status == StatusFailed && e.RetryCount >= e.MaxRetries
	}), nil
}

func (r *fakeRepo) list(limit int, match func(*Event) bool) []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Event
	for _, e := range r.events {
		if match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakeRepo) get(eventID id.ID) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[eventID]
}

// --- fake queue ---

type fakeQueue struct {
	mu        sync.Mutex
	submitted []id.ID
	failWith  error
}

func (q *fakeQueue) Submit(ctx context.Context, eventID id.ID) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return "", q.failWith
	}
	q.submitted = append(q.submitted, eventID)
	return "fake:" + eventID.String(), nil
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.submitted)
}

// --- in-memory cascade store ---

type memRow struct {
	id        string
	parentID  string
	deletedAt *time.Time
}

// memStore keeps rows per table and implements the same "skip already
// deleted" semantics as the batch UPDATE.
type memStore struct {
	mu     sync.Mutex
	tables map[string][]*memRow
	calls  int
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string][]*memRow)}
}

func (s *memStore) addRow(table, rowID, parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], &memRow{id: rowID, parentID: parentID})
}

func (s *memStore) markDeleted(table, rowID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tables[table] {
		if row.id == rowID {
			t := at
			row.deletedAt = &t
		}
	}
}

func (s *memStore) deletedAt(table, rowID string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tables[table] {
		if row.id == rowID {
			return row.deletedAt
		}
	}
	return nil
}

func (s *memStore) Exists(ctx context.Context, table string, aggregateID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tables[table] {
		if row.id == aggregateID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) SoftDeleteChildren(ctx context.Context, rel Relation, parentID string, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var ids []string
	for _, row := range s.tables[rel.Table] {
		if row.parentID == parentID && row.deletedAt == nil {
			t := now
			row.deletedAt = &t
			ids = append(ids, row.id)
		}
	}
	return ids, nil
}

// --- fake cascade auditor ---

type memAuditor struct {
	mu      sync.Mutex
	records []map[string]int
}

func (a *memAuditor) RecordCascade(ctx context.Context, event *Event, deleted map[string]int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := make(map[string]int, len(deleted))
	for k, v := range deleted {
		cp[k] = v
	}
	a.records = append(a.records, cp)
	return nil
}
