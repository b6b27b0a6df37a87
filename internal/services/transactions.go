package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// Every accepted write lands in storage first; the backup sync message is
// best-effort and never fails the user request.
type TransactionService struct {
	store      TransactionStore
	amqpClient *amqp.Client
}

func NewTransactionService(store TransactionStore, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// CreateTransaction validates and persists a new transaction, then publishes
// a backup sync message.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Origin == "" {
		tx.Origin = core.OriginManual
	}
	if tx.Recurrence == "" {
		tx.Recurrence = core.RecurrenceNone
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx.ID = uuid.NewString()
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, tx.ID, tx.OwnerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", tx.ID, "error", err)
		// Don't fail the request - the transaction is saved locally
	}

	return tx, nil
}

// UpdateTransaction applies owner-scoped changes to an existing transaction.
func (s *TransactionService) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Recurrence == "" {
		tx.Recurrence = core.RecurrenceNone
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	existing, err := s.store.GetTransaction(ctx, tx.OwnerID, tx.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Origin = existing.Origin
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	if err := s.publishSyncMessage(ctx, tx.ID, tx.OwnerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", tx.ID, "error", err)
	}

	return tx, nil
}

// DeleteTransaction removes a single transaction owned by the caller.
func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteTransaction(ctx, ownerID, id)
}

// DeleteTransactions bulk-removes transactions of one kind by id set and
// returns how many were deleted. Ids the owner does not hold are ignored.
func (s *TransactionService) DeleteTransactions(ctx context.Context, ownerID string, ids []string, kind core.TransactionKind) (int, error) {
	if !kind.Valid() {
		return 0, core.ErrInvalidKind
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.store.DeleteTransactions(ctx, ownerID, ids, kind)
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id, ownerID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishTransactionSync(ctx, id, ownerID)
}
