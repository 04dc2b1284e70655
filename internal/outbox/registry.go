package outbox

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Relation describes one registered one-to-many relation whose target type
// is soft-deletable. The cascade walks only relations listed here; nothing
// is discovered by reflection over schema metadata.
type Relation struct {
	// Name of the relation, for logs and audit (e.g. "tasks").
	Name string

	// ChildType is the aggregate type of the target rows.
	ChildType string

	// Table and FKColumn locate the child rows of a given parent.
	Table    string
	FKColumn string
}

// Aggregate describes a soft-deletable aggregate type known to the engine.
type Aggregate struct {
	Type  string
	Table string

	Relations []Relation
}

// Registry maps aggregate type names to their cascade relations.
// Built once at startup from explicit literals; never mutated afterwards,
// so lookups need no locking.
type Registry struct {
	aggregates map[string]Aggregate
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// NewRegistry creates an empty relation registry.
func NewRegistry() *Registry {
	return &Registry{aggregates: make(map[string]Aggregate)}
}

// Register adds an aggregate type. Table and column names must be plain
// lowercase identifiers: they are interpolated into SQL by the cascade
// store and must never come from user input.
func (r *Registry) Register(agg Aggregate) error {
	if agg.Type == "" {
		return fmt.Errorf("aggregate type is required")
	}
	if _, exists := r.aggregates[agg.Type]; exists {
		return fmt.Errorf("aggregate type %q already registered", agg.Type)
	}
	if !identRe.MatchString(agg.Table) {
		return fmt.Errorf("aggregate %q: invalid table name %q", agg.Type, agg.Table)
	}
	for _, rel := range agg.Relations {
		if !identRe.MatchString(rel.Table) || !identRe.MatchString(rel.FKColumn) {
			return fmt.Errorf("aggregate %q relation %q: invalid table or column", agg.Type, rel.Name)
		}
	}
	r.aggregates[agg.Type] = agg
	return nil
}

// MustRegister is Register that panics; use for startup wiring.
func (r *Registry) MustRegister(agg Aggregate) {
	if err := r.Register(agg); err != nil {
		panic(err)
	}
}

// Lookup returns the aggregate descriptor for a type.
func (r *Registry) Lookup(aggregateType string) (Aggregate, bool) {
	agg, ok := r.aggregates[aggregateType]
	return agg, ok
}

// Types returns all registered aggregate type names.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.aggregates))
	for t := range r.aggregates {
		types = append(types, t)
	}
	return types
}

// CascadeStore executes the physical cascade operations. The postgres
// implementation batches each relation into a single UPDATE; test fakes
// operate on in-memory trees.
type CascadeStore interface {
	// Exists reports whether the aggregate row is still present,
	// regardless of its deletion mark.
	Exists(ctx context.Context, table string, aggregateID string) (bool, error)

	// SoftDeleteChildren marks all live children of parent under rel as
	// deleted at now, in one statement, and returns the IDs of the rows it
	// actually updated. Rows already deleted are left untouched so earlier
	// deletions keep their original timestamps.
	SoftDeleteChildren(ctx context.Context, rel Relation, parentID string, now time.Time) ([]string, error)
}
