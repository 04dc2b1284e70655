package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_PublishDispatchesAfterCommit(t *testing.T) {
	repo := newFakeRepo()
	txm := &fakeTxManager{}
	queue := &fakeQueue{}
	p := NewPublisher(repo, txm, queue)

	var event *Event
	err := txm.RunInTransaction(t.Context(), func(ctx context.Context) error {
		var err error
		event, err = p.PublishSoftDelete(ctx, "project", "p-1")
		require.NoError(t, err)

		// Inside the transaction nothing has been dispatched yet.
		assert.Equal(t, 0, queue.count())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, queue.count())
	stored := repo.get(event.ID)
	require.NotNil(t, stored)
	assert.Equal(t, StatusPublished, stored.Status)
	assert.NotNil(t, stored.PublishedAt)
	assert.NotNil(t, stored.DispatchHandle)
}

func TestPublisher_RequiresTransaction(t *testing.T) {
	p := NewPublisher(newFakeRepo(), &fakeTxManager{}, &fakeQueue{})

	_, err := p.PublishSoftDelete(t.Context(), "project", "p-1")
	assert.Error(t, err)
}

func TestPublisher_RolledBackTransactionDispatchesNothing(t *testing.T) {
	repo := newFakeRepo()
	txm := &fakeTxManager{}
	queue := &fakeQueue{}
	p := NewPublisher(repo, txm, queue)

	err := txm.RunInTransaction(t.Context(), func(ctx context.Context) error {
		_, err := p.PublishSoftDelete(ctx, "project", "p-1")
		require.NoError(t, err)
		return errors.New("business rule violated")
	})
	require.Error(t, err)
	assert.Equal(t, 0, queue.count())
}

func TestPublisher_DispatchFailureLeavesEntryPending(t *testing.T) {
	repo := newFakeRepo()
	txm := &fakeTxManager{}
	queue := &fakeQueue{failWith: errors.New("queue full")}
	p := NewPublisher(repo, txm, queue)

	var event *Event
	err := txm.RunInTransaction(t.Context(), func(ctx context.Context) error {
		var err error
		event, err = p.PublishSoftDelete(ctx, "project", "p-1")
		return err
	})
	require.NoError(t, err)

	// The commit succeeded; the entry stays pending for the sweeper.
	stored := repo.get(event.ID)
	require.NotNil(t, stored)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.PublishedAt)
}

func TestPublisher_PublishBatch(t *testing.T) {
	repo := newFakeRepo()
	txm := &fakeTxManager{}
	queue := &fakeQueue{}
	p := NewPublisher(repo, txm, queue)

	events := []*Event{
		NewEvent(EventAnnualLeaveGrant, "user", "u-1", nil),
		NewEvent(EventAnnualLeaveGrant, "user", "u-2", nil),
	}
	err := txm.RunInTransaction(t.Context(), func(ctx context.Context) error {
		return p.PublishBatch(ctx, events)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, queue.count())
	for _, e := range events {
		assert.Equal(t, StatusPublished, repo.get(e.ID).Status)
	}
}
