package handlers

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
	"pms/internal/domain/designs"
	"pms/internal/domain/leaves"
	"pms/internal/domain/projects"
	"pms/internal/domain/sales"
	"pms/internal/domain/users"
	"pms/internal/outbox"
)

// --- generic in-memory repository ---

type memRepo[T domain.Entity] struct {
	mu   sync.Mutex
	rows map[id.ID]T
	name string
}

func newMemRepo[T domain.Entity](name string) *memRepo[T] {
	return &memRepo[T]{rows: make(map[id.ID]T), name: name}
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
		return zero, apperror.NewNotFound(r.name, entityID)
	}
	return ent, nil
}

func (r *memRepo[T]) Update(ctx context.Context, ent T) error {
	return r.Create(ctx, ent)
}

func (r *memRepo[T]) SoftDelete(ctx context.Context, entityID id.ID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.rows[entityID]
	if !ok {
		return false, nil
	}
	return ent.MarkDeleted(now), nil
}

func (r *memRepo[T]) Restore(ctx context.Context, entityID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.rows[entityID]
	if !ok || !ent.IsDeleted() {
		return false, nil
	}
	ent.Restore()
	return true, nil
}

func (r *memRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []T
	for _, ent := range r.rows {
		if ent.IsDeleted() && !f.IncludeDeleted {
			continue
		}
		items = append(items, ent)
	}
	return domain.ListResult[T]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.rows[entityID]
	return ok && !ent.IsDeleted(), nil
}

func (r *memRepo[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// --- typed wrappers ---

type memProjectRepo struct{ *memRepo[*projects.Project] }

func (r *memProjectRepo) GetByCode(ctx context.Context, code string) (*projects.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Code == code && !p.IsDeleted() {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("project", code)
}

type memSalesRepo struct{ *memRepo[*sales.ProjectSales] }

func (r *memSalesRepo) GetLiveByProject(ctx context.Context, projectID id.ID) (*sales.ProjectSales, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.rows {
		if rec.ProjectID == projectID && !rec.IsDeleted() {
			return rec, nil
		}
	}
	return nil, apperror.NewNotFound("project_sales", projectID)
}

type memDesignRepo struct {
	*memRepo[*designs.ProjectDesign]
}

func (r *memDesignRepo) GetLiveByProject(ctx context.Context, projectID id.ID) (*designs.ProjectDesign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.rows {
		if rec.ProjectID == projectID && !rec.IsDeleted() {
			return rec, nil
		}
	}
	return nil, apperror.NewNotFound("project_design", projectID)
}

type memUserRepo struct{ *memRepo[*users.User] }

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email && !u.IsDeleted() {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUserRepo) ListActiveHired(ctx context.Context) ([]*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*users.User
	for _, u := range r.rows {
		if u.IsActive && !u.IsDeleted() && u.HiredAt != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

type memGrantRepo struct{ *memRepo[*leaves.LeaveGrant] }

func (r *memGrantRepo) HasGrantOn(ctx context.Context, userID id.ID, grantedOn time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.rows {
		if g.UserID == userID && g.GrantedOn.Equal(grantedOn) && !g.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memGrantRepo) SumUnexpired(ctx context.Context, userID id.ID, asOf time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, g := range r.rows {
		if g.UserID == userID && !g.IsDeleted() && !g.ExpiresOn.Before(asOf) {
			total = total.Add(g.Days)
		}
	}
	return total, nil
}

type memRequestRepo struct{ *memRepo[*leaves.LeaveRequest] }

func (r *memRequestRepo) SumApproved(ctx context.Context, userID id.ID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, req := range r.rows {
		if req.UserID == userID && req.Status == leaves.RequestApproved && !req.IsDeleted() {
			total = total.Add(req.Days)
		}
	}
	return total, nil
}

// --- minimal tx manager ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) OnCommit(ctx context.Context, fn func(ctx context.Context)) error {
	return errors.New("no active transaction")
}

// --- project fan-out tests ---

func projectCreatedFixture() (*ProjectCreated, *memProjectRepo, *memSalesRepo, *memDesignRepo) {
	projectRepo := &memProjectRepo{newMemRepo[*projects.Project]("project")}
	salesRepo := &memSalesRepo{newMemRepo[*sales.ProjectSales]("project_sales")}
	designRepo := &memDesignRepo{newMemRepo[*designs.ProjectDesign]("project_design")}
	return NewProjectCreated(projectRepo, salesRepo, designRepo), projectRepo, salesRepo, designRepo
}

func TestProjectCreated_FansOut(t *testing.T) {
	h, projectRepo, salesRepo, designRepo := projectCreatedFixture()
	ctx := t.Context()

	p := projects.NewProject("PRJ-1", "Alpha")
	require.NoError(t, projectRepo.Create(ctx, p))

	event := outbox.NewEvent(outbox.EventProjectCreated, projects.AggregateType, p.ID.String(), nil)
	require.NoError(t, h.Handle(ctx, event))

	salesRec, err := salesRepo.GetLiveByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, salesRec.ProjectID)

	designRec, err := designRepo.GetLiveByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, designRec.ProjectID)
}

func TestProjectCreated_RedeliveryCreatesNoDuplicates(t *testing.T) {
	h, projectRepo, salesRepo, designRepo := projectCreatedFixture()
	ctx := t.Context()

	p := projects.NewProject("PRJ-1", "Alpha")
	require.NoError(t, projectRepo.Create(ctx, p))

	event := outbox.NewEvent(outbox.EventProjectCreated, projects.AggregateType, p.ID.String(), nil)
	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, event))

	assert.Equal(t, 1, salesRepo.count())
	assert.Equal(t, 1, designRepo.count())
}

func TestProjectCreated_DeletedProjectIsNoOp(t *testing.T) {
	h, projectRepo, salesRepo, designRepo := projectCreatedFixture()
	ctx := t.Context()

	p := projects.NewProject("PRJ-1", "Alpha")
	require.NoError(t, projectRepo.Create(ctx, p))
	_, err := projectRepo.SoftDelete(ctx, p.ID, time.Now().UTC())
	require.NoError(t, err)

	event := outbox.NewEvent(outbox.EventProjectCreated, projects.AggregateType, p.ID.String(), nil)
	require.NoError(t, h.Handle(ctx, event))

	assert.Equal(t, 0, salesRepo.count())
	assert.Equal(t, 0, designRepo.count())
}

func TestProjectCreated_MissingProjectIsPermanent(t *testing.T) {
	h, _, _, _ := projectCreatedFixture()

	event := outbox.NewEvent(outbox.EventProjectCreated, projects.AggregateType, id.New().String(), nil)
	err := h.Handle(t.Context(), event)
	require.Error(t, err)
	assert.True(t, apperror.IsPermanent(err))
}

func TestProjectCreated_MalformedIDIsPermanent(t *testing.T) {
	h, _, _, _ := projectCreatedFixture()

	event := outbox.NewEvent(outbox.EventProjectCreated, projects.AggregateType, "not-a-uuid", nil)
	err := h.Handle(t.Context(), event)
	require.Error(t, err)
	assert.True(t, apperror.IsPermanent(err))
}

// --- leave grant tests ---

type fixedPolicy struct{}

func (fixedPolicy) Steps(ctx context.Context, req *leaves.LeaveRequest) ([]leaves.ApprovalStep, error) {
	return []leaves.ApprovalStep{{Role: "manager"}}, nil
}

func leaveGrantFixture() (*LeaveGrant, *memUserRepo, *memGrantRepo) {
	userRepo := &memUserRepo{newMemRepo[*users.User]("user")}
	grantRepo := &memGrantRepo{newMemRepo[*leaves.LeaveGrant]("leave_grant")}
	requestRepo := &memRequestRepo{newMemRepo[*leaves.LeaveRequest]("leave_request")}
	svc := leaves.NewService(grantRepo, requestRepo, fixedPolicy{}, passthroughTx{}, nil)
	return NewLeaveGrant(userRepo, svc), userRepo, grantRepo
}

func seedUser(t *testing.T, repo *memUserRepo, hiredAt time.Time) *users.User {
	t.Helper()
	u, err := users.NewUser("worker@pms.local", "sup3rsecret", "Worker")
	require.NoError(t, err)
	u.HiredAt = &hiredAt
	require.NoError(t, repo.Create(t.Context(), u))
	return u
}

func grantEvent(u *users.User, grantedOn string) *outbox.Event {
	payload := []byte(`{"grantedOn":"` + grantedOn + `"}`)
	return outbox.NewEvent(outbox.EventAnnualLeaveGrant, users.AggregateType, u.ID.String(), payload)
}

func TestLeaveGrant_GrantsOnAnniversary(t *testing.T) {
	h, userRepo, grantRepo := leaveGrantFixture()
	hired := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	u := seedUser(t, userRepo, hired)

	require.NoError(t, h.Handle(t.Context(), grantEvent(u, "2026-05-20")))
	assert.Equal(t, 1, grantRepo.count())
}

func TestLeaveGrant_RedeliveryDoesNotDoubleCredit(t *testing.T) {
	h, userRepo, grantRepo := leaveGrantFixture()
	hired := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	u := seedUser(t, userRepo, hired)

	event := grantEvent(u, "2026-05-20")
	require.NoError(t, h.Handle(t.Context(), event))
	require.NoError(t, h.Handle(t.Context(), event))

	assert.Equal(t, 1, grantRepo.count())
}

func TestLeaveGrant_NothingDueIsNoOp(t *testing.T) {
	h, userRepo, grantRepo := leaveGrantFixture()
	hired := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	u := seedUser(t, userRepo, hired)

	require.NoError(t, h.Handle(t.Context(), grantEvent(u, "2026-05-21")))
	assert.Equal(t, 0, grantRepo.count())
}

func TestLeaveGrant_InactiveUserIsNoOp(t *testing.T) {
	h, userRepo, grantRepo := leaveGrantFixture()
	hired := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	u := seedUser(t, userRepo, hired)
	u.IsActive = false

	require.NoError(t, h.Handle(t.Context(), grantEvent(u, "2026-05-20")))
	assert.Equal(t, 0, grantRepo.count())
}

func TestLeaveGrant_MissingUserIsPermanent(t *testing.T) {
	h, _, _ := leaveGrantFixture()

	event := outbox.NewEvent(outbox.EventAnnualLeaveGrant, users.AggregateType, id.New().String(), nil)
	err := h.Handle(t.Context(), event)
	require.Error(t, err)
	assert.True(t, apperror.IsPermanent(err))
}
