package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func validTransaction(ownerID string) core.Transaction {
	return core.Transaction{
		OwnerID:    ownerID,
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 2_500},
		Category:   "food",
		OccurredOn: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, nil)

	created, err := svc.CreateTransaction(context.Background(), validTransaction("u1"))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == "" {
		t.Error("ID not assigned")
	}
	if created.Origin != core.OriginManual {
		t.Errorf("Origin = %q, want manual", created.Origin)
	}
	if created.Recurrence != core.RecurrenceNone {
		t.Errorf("Recurrence = %q, want none", created.Recurrence)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
	if len(store.txs) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(store.txs))
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionStore{}, nil)

	tests := []struct {
		name    string
		mutate  func(*core.Transaction)
		wantErr error
	}{
		{"bad kind", func(tx *core.Transaction) { tx.Kind = "transfer" }, core.ErrInvalidKind},
		{"zero amount", func(tx *core.Transaction) { tx.Amount.Cents = 0 }, core.ErrInvalidAmount},
		{"blank category", func(tx *core.Transaction) { tx.Category = "  " }, core.ErrEmptyCategory},
		{"bad payment method", func(tx *core.Transaction) { tx.Payment = "barter" }, core.ErrInvalidPayment},
		{"period without recurring flag", func(tx *core.Transaction) { tx.Recurrence = core.RecurrenceWeekly }, core.ErrInvalidRecurrence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction("u1")
			tt.mutate(&tx)
			if _, err := svc.CreateTransaction(context.Background(), tx); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateTransaction error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateTransactionPreservesProvenance(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, nil)
	ctx := context.Background()

	seed := validTransaction("u1")
	seed.Origin = core.OriginProfile
	created, err := svc.CreateTransaction(ctx, seed)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	edit := created
	edit.Amount.Cents = 9_900
	edit.Origin = core.OriginManual // callers cannot rewrite provenance

	updated, err := svc.UpdateTransaction(ctx, edit)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Origin != core.OriginProfile {
		t.Errorf("Origin = %q, want %q", updated.Origin, core.OriginProfile)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", created.CreatedAt, updated.CreatedAt)
	}
	if updated.Amount.Cents != 9_900 {
		t.Errorf("Amount = %d, want 9900", updated.Amount.Cents)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionStore{}, nil)

	tx := validTransaction("u1")
	tx.ID = "missing"
	if _, err := svc.UpdateTransaction(context.Background(), tx); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateTransaction error = %v, want %v", err, core.ErrNotFound)
	}
}

func TestDeleteTransactions(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := svc.CreateTransaction(ctx, validTransaction("u1"))
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
		ids = append(ids, created.ID)
	}
	incomeTx := validTransaction("u1")
	incomeTx.Kind = core.Income
	income, err := svc.CreateTransaction(ctx, incomeTx)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := svc.DeleteTransactions(ctx, "u1", ids, "transfer"); !errors.Is(err, core.ErrInvalidKind) {
		t.Errorf("invalid kind error = %v, want %v", err, core.ErrInvalidKind)
	}
	if n, err := svc.DeleteTransactions(ctx, "u1", nil, core.Expense); err != nil || n != 0 {
		t.Errorf("empty ids = %d, %v; want 0, nil", n, err)
	}

	// The income id does not match the expense kind and is left alone.
	n, err := svc.DeleteTransactions(ctx, "u1", append(ids, income.ID), core.Expense)
	if err != nil {
		t.Fatalf("DeleteTransactions: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
	if remaining, _ := store.ListTransactions(ctx, "u1"); len(remaining) != 1 || remaining[0].ID != income.ID {
		t.Errorf("remaining = %v, want only the income row", remaining)
	}
}

func TestDeleteTransactionOwnerScoped(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, nil)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, validTransaction("u1"))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "u2", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign delete error = %v, want %v", err, core.ErrNotFound)
	}
	if err := svc.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}
