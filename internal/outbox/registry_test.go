package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Aggregate{
		Type:  "project",
		Table: "projects",
		Relations: []Relation{
			{Name: "tasks", ChildType: "task", Table: "tasks", FKColumn: "project_id"},
		},
	})
	require.NoError(t, err)

	agg, ok := r.Lookup("project")
	require.True(t, ok)
	assert.Len(t, agg.Relations, 1)

	_, ok = r.Lookup("unknown")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Aggregate{Type: "task", Table: "tasks"}))

	err := r.Register(Aggregate{Type: "task", Table: "tasks"})
	assert.ErrorContains(t, err, "already registered")
}

func TestRegistry_ValidatesIdentifiers(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		agg  Aggregate
	}{
		{"empty type", Aggregate{Table: "projects"}},
		{"bad table", Aggregate{Type: "project", Table: "projects; DROP TABLE users"}},
		{"uppercase table", Aggregate{Type: "project", Table: "Projects"}},
		{"bad relation column", Aggregate{
			Type:  "project",
			Table: "projects",
			Relations: []Relation{
				{Name: "tasks", ChildType: "task", Table: "tasks", FKColumn: "project_id OR 1=1"},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Register(tt.agg))
		})
	}
}
