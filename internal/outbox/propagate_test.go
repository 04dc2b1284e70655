package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/internal/core/apperror"
)

// buildTestRegistry wires a three-level tree:
// root -> branch (c1, c2) -> leaf (grandchildren), plus a sibling root.
func buildTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(Aggregate{
		Type:  "root",
		Table: "roots",
		Relations: []Relation{
			{Name: "branches", ChildType: "branch", Table: "branches", FKColumn: "root_id"},
		},
	})
	r.MustRegister(Aggregate{
		Type:  "branch",
		Table: "branches",
		Relations: []Relation{
			{Name: "leaves", ChildType: "leaf", Table: "leaves", FKColumn: "branch_id"},
		},
	})
	return r
}

func seedTree(store *memStore) {
	store.addRow("roots", "root-1", "")
	store.addRow("branches", "c1", "root-1")
	store.addRow("branches", "c2", "root-1")
	store.addRow("leaves", "g1", "c1")

	store.addRow("roots", "root-2", "")
	store.addRow("branches", "sibling", "root-2")
}

func TestSoftDeleteHandler_CascadesWholeSubtree(t *testing.T) {
	store := newMemStore()
	seedTree(store)
	auditor := &memAuditor{}
	h := NewSoftDeleteHandler(buildTestRegistry(t), store, auditor)

	event := NewEvent(EventSoftDeletePropagate, "root", "root-1", nil)
	require.NoError(t, h.Handle(t.Context(), event))

	assert.NotNil(t, store.deletedAt("branches", "c1"))
	assert.NotNil(t, store.deletedAt("branches", "c2"))
	assert.NotNil(t, store.deletedAt("leaves", "g1"))

	// unrelated subtree untouched
	assert.Nil(t, store.deletedAt("branches", "sibling"))

	require.Len(t, auditor.records, 1)
	assert.Equal(t, map[string]int{"branch": 2, "leaf": 1}, auditor.records[0])
}

func TestSoftDeleteHandler_Idempotent(t *testing.T) {
	store := newMemStore()
	seedTree(store)
	h := NewSoftDeleteHandler(buildTestRegistry(t), store, nil)

	event := NewEvent(EventSoftDeletePropagate, "root", "root-1", nil)
	require.NoError(t, h.Handle(t.Context(), event))
	first := store.deletedAt("leaves", "g1")
	require.NotNil(t, first)

	// Reprocessing finds no live children and changes nothing.
	require.NoError(t, h.Handle(t.Context(), event))
	assert.Equal(t, first, store.deletedAt("leaves", "g1"))
}

func TestSoftDeleteHandler_PreservesEarlierDeletions(t *testing.T) {
	store := newMemStore()
	seedTree(store)
	h := NewSoftDeleteHandler(buildTestRegistry(t), store, nil)

	earlier := time.Now().UTC().Add(-time.Hour)
	store.markDeleted("branches", "c2", earlier)

	event := NewEvent(EventSoftDeletePropagate, "root", "root-1", nil)
	require.NoError(t, h.Handle(t.Context(), event))

	// c2 keeps its original timestamp; its subtree is not revisited.
	require.NotNil(t, store.deletedAt("branches", "c2"))
	assert.Equal(t, earlier, *store.deletedAt("branches", "c2"))
	assert.NotNil(t, store.deletedAt("branches", "c1"))
}

func TestSoftDeleteHandler_UnknownAggregateIsPermanent(t *testing.T) {
	h := NewSoftDeleteHandler(buildTestRegistry(t), newMemStore(), nil)

	event := NewEvent(EventSoftDeletePropagate, "mystery", "x-1", nil)
	err := h.Handle(t.Context(), event)
	require.Error(t, err)
	assert.True(t, apperror.IsPermanent(err))
}

func TestSoftDeleteHandler_AggregateGoneIsPermanent(t *testing.T) {
	store := newMemStore()
	h := NewSoftDeleteHandler(buildTestRegistry(t), store, nil)

	event := NewEvent(EventSoftDeletePropagate, "root", "missing", nil)
	err := h.Handle(t.Context(), event)
	require.Error(t, err)
	assert.True(t, apperror.IsPermanent(err))
}

func TestSoftDeleteHandler_CycleTerminates(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Aggregate{
		Type:  "node",
		Table: "nodes",
		Relations: []Relation{
			{Name: "links", ChildType: "node", Table: "nodes", FKColumn: "parent_id"},
		},
	})

	store := newMemStore()
	store.addRow("nodes", "a", "b")
	store.addRow("nodes", "b", "a")

	h := NewSoftDeleteHandler(r, store, nil)
	event := NewEvent(EventSoftDeletePropagate, "node", "a", nil)

	require.NoError(t, h.Handle(t.Context(), event))
	assert.NotNil(t, store.deletedAt("nodes", "b"))
}

func TestSoftDeleteHandler_DepthLimit(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Aggregate{
		Type:  "node",
		Table: "nodes",
		Relations: []Relation{
			{Name: "children", ChildType: "node", Table: "nodes", FKColumn: "parent_id"},
		},
	})

	store := newMemStore()
	store.addRow("nodes", nodeID(0), "")
	for i := 1; i <= DefaultMaxDepth+2; i++ {
		store.addRow("nodes", nodeID(i), nodeID(i-1))
	}

	h := NewSoftDeleteHandler(r, store, nil)
	event := NewEvent(EventSoftDeletePropagate, "node", nodeID(0), nil)

	err := h.Handle(t.Context(), event)
	require.Error(t, err)
	assert.True(t, apperror.IsPermanent(err))
}

func nodeID(i int) string {
	return "n" + string(rune('0'+i/10)) + string(rune('0'+i%10))
}
