package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// ObjectiveService enforces the savings-objective rules: the per-owner
// active cap and the completion transition.
type ObjectiveService struct {
	store ObjectiveStore
}

func NewObjectiveService(store ObjectiveStore) *ObjectiveService {
	return &ObjectiveService{store: store}
}

// CreateObjective validates and persists a new objective, enforcing the
// active-objective cap. The cap is a read-then-write check; the storage
// collaborator's consistency guarantee is what actually holds it under
// concurrent creations.
func (s *ObjectiveService) CreateObjective(ctx context.Context, o core.Objective) (core.Objective, error) {
	if o.Status == "" {
		o.Status = core.ObjectiveActive
	}
	if o.Priority == "" {
		o.Priority = core.PriorityNormal
	}
	if o.StartDate.IsZero() {
		o.StartDate = time.Now().UTC()
	}
	if err := o.Validate(); err != nil {
		return core.Objective{}, err
	}

	active, err := s.store.CountActiveObjectives(ctx, o.OwnerID)
	if err != nil {
		return core.Objective{}, fmt.Errorf("count active objectives: %w", err)
	}
	if o.Status == core.ObjectiveActive && active >= core.MaxActiveObjectives {
		return core.Objective{}, core.ErrTooManyObjectives
	}

	o.ID = uuid.NewString()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o = applyCompletion(o)

	if err := s.store.CreateObjective(ctx, o); err != nil {
		return core.Objective{}, fmt.Errorf("save objective: %w", err)
	}
	return o, nil
}

// UpdateObjective applies owner-scoped edits and re-evaluates the
// completion transition.
func (s *ObjectiveService) UpdateObjective(ctx context.Context, o core.Objective) (core.Objective, error) {
	existing, err := s.store.GetObjective(ctx, o.OwnerID, o.ID)
	if err != nil {
		return core.Objective{}, err
	}
	if o.Status == "" {
		o.Status = existing.Status
	}
	if err := o.Validate(); err != nil {
		return core.Objective{}, err
	}
	// Archived is sticky: reaching the target never pulls an objective
	// out of the archive. Only an explicit status edit reactivates it.
	if existing.Status == core.ObjectiveArchived && o.Status == core.ObjectiveArchived {
		o.CreatedAt = existing.CreatedAt
		o.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateObjective(ctx, o); err != nil {
			return core.Objective{}, err
		}
		return o, nil
	}

	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = time.Now().UTC()
	o = applyCompletion(o)

	if err := s.store.UpdateObjective(ctx, o); err != nil {
		return core.Objective{}, err
	}
	return o, nil
}

// AddFunds credits a positive amount onto an objective's current balance
// and applies the completion transition.
func (s *ObjectiveService) AddFunds(ctx context.Context, ownerID, id string, amount core.Money) (core.Objective, error) {
	if err := amount.Validate(); err != nil {
		return core.Objective{}, err
	}

	o, err := s.store.GetObjective(ctx, ownerID, id)
	if err != nil {
		return core.Objective{}, err
	}

	o.Current.Cents += amount.Cents
	o.UpdatedAt = time.Now().UTC()
	if o.Status != core.ObjectiveArchived {
		o = applyCompletion(o)
	}

	if err := s.store.UpdateObjective(ctx, o); err != nil {
		return core.Objective{}, err
	}
	return o, nil
}

// DeleteObjective removes an objective owned by the caller. There is no
// automatic deletion anywhere else.
func (s *ObjectiveService) DeleteObjective(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteObjective(ctx, ownerID, id)
}

// applyCompletion flips an objective to completed once the current amount
// reaches the target. Archived objectives are handled by the callers.
func applyCompletion(o core.Objective) core.Objective {
	if o.Status != core.ObjectiveArchived && o.Current.Cents >= o.Target.Cents {
		o.Status = core.ObjectiveCompleted
	}
	return o
}
