package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

func newBackupTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "backup.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func backupTransaction(id, ownerID string) core.Transaction {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return core.Transaction{
		ID:         id,
		OwnerID:    ownerID,
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 4_200},
		Category:   "transport",
		OccurredOn: now,
		Payment:    core.PaymentCard,
		Recurrence: core.RecurrenceNone,
		Origin:     core.OriginManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, core.Transaction) (string, error) {
	return "", errors.New("sheet unavailable")
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newBackupTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateTransaction(ctx, backupTransaction("t1", "u1")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	appender := memory.New()
	w := NewBackupWorker(repo, appender, 10)

	msg := &amqp.TransactionSyncMessage{ID: "t1", OwnerID: "u1"}
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	items := appender.Items()
	if len(items) != 1 {
		t.Fatalf("appended %d transactions, want 1", len(items))
	}
	if items[0].ID != "t1" || items[0].Amount.Cents != 4_200 {
		t.Errorf("appended transaction = %+v", items[0])
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

func TestHandleSyncMessageUnknownTransaction(t *testing.T) {
	repo := newBackupTestRepo(t)
	w := NewBackupWorker(repo, memory.New(), 10)

	msg := &amqp.TransactionSyncMessage{ID: "missing", OwnerID: "u1"}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown transaction")
	}
}

func TestProcessPendingTransactions(t *testing.T) {
	repo := newBackupTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := repo.CreateTransaction(ctx, backupTransaction(id, "u1")); err != nil {
			t.Fatalf("CreateTransaction %s: %v", id, err)
		}
	}

	appender := memory.New()
	w := NewBackupWorker(repo, appender, 10)

	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("ProcessPendingTransactions: %v", err)
	}
	if got := len(appender.Items()); got != 3 {
		t.Errorf("appended %d transactions, want 3", got)
	}

	// A second pass finds nothing left to do.
	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("second ProcessPendingTransactions: %v", err)
	}
	if got := len(appender.Items()); got != 3 {
		t.Errorf("appended %d transactions after second pass, want 3", got)
	}
}

func TestBackupFailureMarksSyncError(t *testing.T) {
	repo := newBackupTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateTransaction(ctx, backupTransaction("t1", "u1")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	w := NewBackupWorker(repo, failingAppender{}, 10)
	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("ProcessPendingTransactions: %v", err)
	}

	// Errored transactions leave the pending queue so they are not retried
	// on every scan.
	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after failure = %d, want 0", len(pending))
	}
}

func TestStartupBackupCheck(t *testing.T) {
	repo := newBackupTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateTransaction(ctx, backupTransaction("t1", "u1")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	appender := memory.New()
	w := NewBackupWorker(repo, appender, 2)

	if err := w.StartupBackupCheck(ctx); err != nil {
		t.Fatalf("StartupBackupCheck: %v", err)
	}
	if got := len(appender.Items()); got != 1 {
		t.Errorf("appended %d transactions, want 1", got)
	}
}
