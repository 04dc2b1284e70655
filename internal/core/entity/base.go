// Package entity provides core domain entity building blocks.
package entity

import (
	"context"
	"time"

	"pms/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Timestamps tracks record creation and modification times.
type Timestamps struct {
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SoftDelete gives an entity a nullable deletion timestamp.
// A nil DeletedAt means the entity is live; a set DeletedAt means it is
// logically removed but its row is retained.
type SoftDelete struct {
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// IsDeleted returns true if the entity has been soft-deleted.
func (s *SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}

// MarkDeleted sets the deletion timestamp if not already set.
// Returns false when the entity was already deleted: callers use this to
// avoid enqueueing duplicate propagation events for repeated deletes.
func (s *SoftDelete) MarkDeleted(now time.Time) bool {
	if s.DeletedAt != nil {
		return false
	}
	t := now.UTC()
	s.DeletedAt = &t
	return true
}

// Restore clears the deletion timestamp unconditionally.
// Restoration is never propagated to dependents.
func (s *SoftDelete) Restore() {
	s.DeletedAt = nil
}

// Base contains common fields for all domain entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	Timestamps
	SoftDelete
}

// NewBase creates a new Base with generated ID and timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:      id.New(),
		Version: 1,
		Timestamps: Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// GetID returns the entity primary key.
func (b *Base) GetID() id.ID {
	return b.ID
}

// Touch updates UpdatedAt and increments version (for optimistic locking).
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// SetVersion updates the version number (used by repository after sync).
func (b *Base) SetVersion(v int) {
	b.Version = v
}
