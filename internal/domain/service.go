package domain

import (
	"context"
	"fmt"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/core/id"
	"pms/internal/core/tx"
	"pms/internal/outbox"
	"pms/pkg/logger"
)

// EntityService provides business logic shared by all soft-deletable
// aggregates. Deleting an aggregate enqueues a propagation event in the same
// transaction; restoring never does.
type EntityService[T Entity] struct {
	repo      Repository[T]
	txManager tx.Manager
	publisher *outbox.Publisher
	hooks     *HookRegistry[T]

	// aggregateType as registered in the relation registry; doubles as the
	// entity name in error messages
	aggregateType string
}

// EntityServiceConfig configures the entity service.
type EntityServiceConfig[T Entity] struct {
	Repo          Repository[T]
	TxManager     tx.Manager
	Publisher     *outbox.Publisher
	AggregateType string
}

// NewEntityService creates a new entity service.
func NewEntityService[T Entity](cfg EntityServiceConfig[T]) *EntityService[T] {
	return &EntityService[T]{
		repo:          cfg.Repo,
		txManager:     cfg.TxManager,
		publisher:     cfg.Publisher,
		hooks:         NewHookRegistry[T](),
		aggregateType: cfg.AggregateType,
	}
}

// Hooks returns the hook registry for external registration.
func (s *EntityService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Publisher exposes the outbox publisher for hooks that enqueue extra events
// in the same transaction.
func (s *EntityService[T]) Publisher() *outbox.Publisher {
	return s.publisher
}

func (s *EntityService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *EntityService[T]) normalizeGetErr(err error, entityID any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.aggregateType, entityID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.aggregateType).WithDetail("id", entityID)
}

// Create creates a new entity.
func (s *EntityService[T]) Create(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeCreate, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ent); err != nil {
			return fmt.Errorf("create %s: %w", s.aggregateType, err)
		}
		// in-transaction hooks may publish follow-up events
		return s.hooks.Run(ctx, AfterCreate, ent)
	})
	return err
}

// GetByID retrieves entity by ID.
func (s *EntityService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return ent, s.normalizeGetErr(err, entityID.String())
	}
	return ent, nil
}

// Update updates an existing entity.
func (s *EntityService[T]) Update(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, ent); err != nil {
			return fmt.Errorf("update %s: %w", s.aggregateType, err)
		}
		return s.hooks.Run(ctx, AfterUpdate, ent)
	})
	return err
}

// Delete soft-deletes the aggregate and enqueues the propagation event in the
// same transaction. Returns alreadyDeleted=true (and no event) when the
// aggregate was deleted before: repeated deletes are observable no-ops.
func (s *EntityService[T]) Delete(ctx context.Context, entityID id.ID) (alreadyDeleted bool, err error) {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return false, s.normalizeGetErr(err, entityID.String())
	}
	if ent.IsDeleted() {
		return true, nil
	}

	if err := s.hooks.Run(ctx, BeforeDelete, ent); err != nil {
		return false, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.repo.SoftDelete(ctx, entityID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("delete %s: %w", s.aggregateType, err)
		}
		if !deleted {
			// lost the race to a concurrent delete
			alreadyDeleted = true
			return nil
		}
		if s.publisher != nil {
			if _, err := s.publisher.PublishSoftDelete(ctx, s.aggregateType, entityID.String()); err != nil {
				return err
			}
		}
		return s.hooks.Run(ctx, AfterDelete, ent)
	})
	if err != nil {
		return false, err
	}
	return alreadyDeleted, nil
}

// Restore clears the deletion mark on the aggregate itself. Descendants
// deleted by an earlier cascade stay deleted; restoration does not propagate.
func (s *EntityService[T]) Restore(ctx context.Context, entityID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		restored, err := s.repo.Restore(ctx, entityID)
		if err != nil {
			return fmt.Errorf("restore %s: %w", s.aggregateType, err)
		}
		if !restored {
			logger.Debug(ctx, "restore on live entity, nothing to do",
				"entity", s.aggregateType, "id", entityID)
		}
		return nil
	})
	return err
}

// List retrieves entities with filtering.
func (s *EntityService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if a live entity exists.
func (s *EntityService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}
