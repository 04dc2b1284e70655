package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweeperFixture() (*Sweeper, *fakeRepo, *fakeQueue) {
	repo := newFakeRepo()
	queue := &fakeQueue{}
	s := NewSweeper(repo, queue, SweeperConfig{
		Interval:    time.Second,
		GraceWindow: 10 * time.Second,
		BatchSize:   100,
	})
	return s, repo, queue
}

func TestSweeper_RedispatchesStalePending(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	stale := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	stale.CreatedAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, stale))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, queue.count())
	assert.Equal(t, StatusPublished, repo.get(stale.ID).Status)
}

func TestSweeper_LeavesFreshPendingAlone(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	fresh := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, queue.count())
	assert.Equal(t, StatusPending, repo.get(fresh.ID).Status)
}

func TestSweeper_RedispatchesRetryableFailed(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	failed := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, failed))
	require.NoError(t, repo.MarkFailed(ctx, failed.ID, "transient", false))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, queue.count())

	// Redispatch moves the entry back to published; the retry count is
	// only consumed by actual processing failures.
	stored := repo.get(failed.ID)
	assert.Equal(t, StatusPublished, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
}

func TestSweeper_SkipsExhaustedEntries(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	exhausted := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, exhausted))
	require.NoError(t, repo.MarkFailed(ctx, exhausted.ID, "gone for good", true))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, queue.count())
	assert.Equal(t, StatusFailed, repo.get(exhausted.ID).Status)

	listed, err := repo.ListExhausted(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSweeper_SubmitFailureKeepsEntryUntouched(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()
	queue.failWith = errors.New("queue unavailable")

	stale := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	stale.CreatedAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, stale))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, StatusPending, repo.get(stale.ID).Status)
}

func TestSweeper_RedispatchesLostSubmission(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	// Submitted into a pool that died before processing: the entry was
	// marked published but processed_at never arrived.
	lost := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, lost))
	require.NoError(t, repo.MarkPublished(ctx, lost.ID, "pool:gone"))
	stale := time.Now().UTC().Add(-time.Hour)
	repo.get(lost.ID).PublishedAt = &stale

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, queue.count())

	// Still published, and published_at keeps the first dispatch time.
	stored := repo.get(lost.ID)
	assert.Equal(t, StatusPublished, stored.Status)
	assert.Equal(t, stale, *stored.PublishedAt)
}

func TestSweeper_LeavesFreshPublishedAlone(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	inFlight := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, inFlight))
	require.NoError(t, repo.MarkPublished(ctx, inFlight.ID, "pool:alive"))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, queue.count())
}

func TestSweeper_SkipsProcessedEntries(t *testing.T) {
	s, repo, queue := sweeperFixture()
	ctx := t.Context()

	done := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, done))
	require.NoError(t, repo.MarkPublished(ctx, done.ID, "pool:h"))
	stale := time.Now().UTC().Add(-time.Hour)
	repo.get(done.ID).PublishedAt = &stale
	require.NoError(t, repo.MarkProcessed(ctx, done.ID))

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, queue.count())
}

func TestNewSweeper_DefaultsZeroConfig(t *testing.T) {
	s := NewSweeper(newFakeRepo(), &fakeQueue{}, SweeperConfig{})

	def := DefaultSweeperConfig()
	assert.Equal(t, def.Interval, s.cfg.Interval)
	assert.Equal(t, def.GraceWindow, s.cfg.GraceWindow)
	assert.Equal(t, def.BatchSize, s.cfg.BatchSize)
}
