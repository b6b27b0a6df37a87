package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// BackupWorker copies transactions from SQLite to the external backup sheet.
// It is driven by AMQP sync messages, with a periodic pending scan as a
// recovery path for lost messages.
type BackupWorker struct {
	storage   *storage.SQLiteRepository
	appender  sheets.TransactionAppender
	batchSize int
}

func NewBackupWorker(storage *storage.SQLiteRepository, appender sheets.TransactionAppender, batchSize int) *BackupWorker {
	return &BackupWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"owner_id", msg.OwnerID)

	tx, err := w.storage.GetTransaction(ctx, msg.OwnerID, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.backupTransaction(ctx, tx); err != nil {
		return fmt.Errorf("backup transaction: %w", err)
	}

	return nil
}

// ProcessPendingTransactions backs up any transactions still marked pending.
// This is a backup mechanism in case AMQP messages are lost.
func (w *BackupWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, tx := range pending {
		if err := w.backupTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to back up transaction", "id", tx.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupBackupCheck verifies and backs up any pending transactions at worker
// startup. This recovers from missed AMQP messages or worker downtime.
func (w *BackupWorker) StartupBackupCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, tx := range pending {
		if err := w.backupTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to back up transaction during startup",
				"id", tx.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup backup completed",
		"total", len(pending),
		"backed_up", successCount,
		"errors", errorCount)

	return nil
}

func (w *BackupWorker) backupTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.appender.Append(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkTransactionSyncError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to backup sheet: %w", err)
	}

	if err := w.storage.MarkTransactionSynced(ctx, tx.ID); err != nil {
		// The append itself worked, so keep going.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully backed up transaction",
		"id", tx.ID,
		"row_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}
