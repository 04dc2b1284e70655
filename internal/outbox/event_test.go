package outbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/internal/core/id"
)

func TestNewEvent_Defaults(t *testing.T) {
	e := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)

	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, 0, e.RetryCount)
	assert.Equal(t, DefaultMaxRetries, e.MaxRetries)
	assert.Equal(t, json.RawMessage(`{}`), e.Payload)
	assert.NotEqual(t, id.Nil(), e.ID)
	assert.Nil(t, e.PublishedAt)
	assert.Nil(t, e.ProcessedAt)
}

func TestEvent_ShouldRetry(t *testing.T) {
	e := NewEvent(EventProjectCreated, "project", "p-1", nil)

	require.True(t, e.ShouldRetry())

	e.RetryCount = e.MaxRetries - 1
	assert.True(t, e.ShouldRetry())

	e.RetryCount = e.MaxRetries
	assert.False(t, e.ShouldRetry())
}

func TestFakeRepo_TransitionGuards(t *testing.T) {
	ctx := t.Context()
	repo := newFakeRepo()
	e := NewEvent(EventSoftDeletePropagate, "project", "p-1", nil)
	require.NoError(t, repo.Create(ctx, e))

	// pending -> published, published_at set once
	require.NoError(t, repo.MarkPublished(ctx, e.ID, "h1"))
	first := repo.get(e.ID).PublishedAt
	require.NotNil(t, first)
	require.NoError(t, repo.MarkPublished(ctx, e.ID, "h2"))
	assert.Equal(t, first, repo.get(e.ID).PublishedAt)
	assert.Equal(t, "h2", *repo.get(e.ID).DispatchHandle)

	// transient failure increments the retry count
	require.NoError(t, repo.MarkFailed(ctx, e.ID, "boom", false))
	assert.Equal(t, StatusFailed, repo.get(e.ID).Status)
	assert.Equal(t, 1, repo.get(e.ID).RetryCount)

	// permanent failure exhausts the budget immediately
	require.NoError(t, repo.MarkFailed(ctx, e.ID, "gone", true))
	assert.Equal(t, DefaultMaxRetries, repo.get(e.ID).RetryCount)

	// processed is terminal: later marks are no-ops
	require.NoError(t, repo.MarkProcessed(ctx, e.ID))
	require.NoError(t, repo.MarkFailed(ctx, e.ID, "late", false))
	require.NoError(t, repo.MarkPublished(ctx, e.ID, "late"))
	assert.Equal(t, StatusProcessed, repo.get(e.ID).Status)
}
