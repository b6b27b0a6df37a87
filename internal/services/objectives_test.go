package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func validObjective(ownerID string) core.Objective {
	return core.Objective{
		OwnerID:   ownerID,
		Title:     "Fonds d'urgence",
		Target:    core.Money{Cents: 500_000},
		Category:  core.CategoryEmergency,
		Frequency: core.SavingsMonthly,
		Priority:  core.PriorityNormal,
	}
}

func TestCreateObjectiveDefaults(t *testing.T) {
	store := &fakeObjectiveStore{}
	svc := NewObjectiveService(store)

	created, err := svc.CreateObjective(context.Background(), validObjective("u1"))
	if err != nil {
		t.Fatalf("CreateObjective: %v", err)
	}
	if created.ID == "" {
		t.Error("ID not assigned")
	}
	if created.Status != core.ObjectiveActive {
		t.Errorf("Status = %q, want active", created.Status)
	}
	if created.StartDate.IsZero() {
		t.Error("StartDate not defaulted")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestCreateObjectiveValidation(t *testing.T) {
	svc := NewObjectiveService(&fakeObjectiveStore{})

	tests := []struct {
		name    string
		mutate  func(*core.Objective)
		wantErr error
	}{
		{"empty title", func(o *core.Objective) { o.Title = "  " }, core.ErrEmptyTitle},
		{"target below minimum", func(o *core.Objective) { o.Target.Cents = 99_999 }, core.ErrTargetTooSmall},
		{"bad category", func(o *core.Objective) { o.Category = "yachts" }, core.ErrInvalidCategory},
		{"deadline before start", func(o *core.Objective) {
			o.StartDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			o.Deadline = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		}, core.ErrInvalidDeadline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validObjective("u1")
			tt.mutate(&o)
			if _, err := svc.CreateObjective(context.Background(), o); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateObjective error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateObjectiveActiveCap(t *testing.T) {
	store := &fakeObjectiveStore{}
	svc := NewObjectiveService(store)
	ctx := context.Background()

	for i := 0; i < core.MaxActiveObjectives; i++ {
		if _, err := svc.CreateObjective(ctx, validObjective("u1")); err != nil {
			t.Fatalf("seed objective %d: %v", i, err)
		}
	}

	if _, err := svc.CreateObjective(ctx, validObjective("u1")); !errors.Is(err, core.ErrTooManyObjectives) {
		t.Errorf("CreateObjective error = %v, want %v", err, core.ErrTooManyObjectives)
	}

	// The cap is per owner, another user is unaffected.
	if _, err := svc.CreateObjective(ctx, validObjective("u2")); err != nil {
		t.Errorf("CreateObjective for other owner: %v", err)
	}
}

func TestCreateObjectiveAlreadyFunded(t *testing.T) {
	svc := NewObjectiveService(&fakeObjectiveStore{})

	o := validObjective("u1")
	o.Current = core.Money{Cents: 500_000}

	created, err := svc.CreateObjective(context.Background(), o)
	if err != nil {
		t.Fatalf("CreateObjective: %v", err)
	}
	if created.Status != core.ObjectiveCompleted {
		t.Errorf("Status = %q, want completed", created.Status)
	}
}

func TestAddFunds(t *testing.T) {
	store := &fakeObjectiveStore{}
	svc := NewObjectiveService(store)
	ctx := context.Background()

	created, err := svc.CreateObjective(ctx, validObjective("u1"))
	if err != nil {
		t.Fatalf("CreateObjective: %v", err)
	}

	o, err := svc.AddFunds(ctx, "u1", created.ID, core.Money{Cents: 200_000})
	if err != nil {
		t.Fatalf("AddFunds: %v", err)
	}
	if o.Current.Cents != 200_000 {
		t.Errorf("Current = %d, want 200000", o.Current.Cents)
	}
	if o.Status != core.ObjectiveActive {
		t.Errorf("Status = %q, want still active", o.Status)
	}

	// Crossing the target completes the objective.
	o, err = svc.AddFunds(ctx, "u1", created.ID, core.Money{Cents: 300_000})
	if err != nil {
		t.Fatalf("AddFunds: %v", err)
	}
	if o.Status != core.ObjectiveCompleted {
		t.Errorf("Status = %q, want completed", o.Status)
	}

	if _, err := svc.AddFunds(ctx, "u1", created.ID, core.Money{Cents: -50}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative deposit error = %v, want %v", err, core.ErrInvalidAmount)
	}
	if _, err := svc.AddFunds(ctx, "u2", created.ID, core.Money{Cents: 100}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign owner error = %v, want %v", err, core.ErrNotFound)
	}
}

func TestArchivedObjectiveStaysArchived(t *testing.T) {
	store := &fakeObjectiveStore{}
	svc := NewObjectiveService(store)
	ctx := context.Background()

	created, err := svc.CreateObjective(ctx, validObjective("u1"))
	if err != nil {
		t.Fatalf("CreateObjective: %v", err)
	}

	archived := created
	archived.Status = core.ObjectiveArchived
	if _, err := svc.UpdateObjective(ctx, archived); err != nil {
		t.Fatalf("archive: %v", err)
	}

	// Funding past the target must not resurrect it as completed.
	o, err := svc.AddFunds(ctx, "u1", created.ID, core.Money{Cents: 600_000})
	if err != nil {
		t.Fatalf("AddFunds: %v", err)
	}
	if o.Status != core.ObjectiveArchived {
		t.Errorf("Status = %q, want archived", o.Status)
	}

	// Neither does an ordinary edit that leaves the status archived.
	edit := o
	edit.Note = "on hold"
	o, err = svc.UpdateObjective(ctx, edit)
	if err != nil {
		t.Fatalf("UpdateObjective: %v", err)
	}
	if o.Status != core.ObjectiveArchived {
		t.Errorf("Status after edit = %q, want archived", o.Status)
	}

	// An explicit reactivation with the target met completes immediately.
	edit = o
	edit.Status = core.ObjectiveActive
	o, err = svc.UpdateObjective(ctx, edit)
	if err != nil {
		t.Fatalf("UpdateObjective: %v", err)
	}
	if o.Status != core.ObjectiveCompleted {
		t.Errorf("Status after reactivation = %q, want completed", o.Status)
	}
}
