package services

import (
	"context"

	"fintrack/internal/core"
)

// Ports for the storage collaborator. The engine only needs owner-scoped
// access; how rows are laid out is the repository's business.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, tx core.Transaction) error
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, ownerID, id string) error
		// DeleteTransactions removes the given ids of one kind and reports
		// how many rows actually went away.
		DeleteTransactions(ctx context.Context, ownerID string, ids []string, kind core.TransactionKind) (int, error)
		// HasTransactionWithOrigin reports whether the owner already has a
		// transaction with the given origin and category. This is the
		// importer's sole idempotency guard.
		HasTransactionWithOrigin(ctx context.Context, ownerID string, origin core.Origin, category string) (bool, error)
	}

	ObjectiveStore interface {
		ListObjectives(ctx context.Context, ownerID string) ([]core.Objective, error)
		GetObjective(ctx context.Context, ownerID, id string) (core.Objective, error)
		CreateObjective(ctx context.Context, o core.Objective) error
		UpdateObjective(ctx context.Context, o core.Objective) error
		DeleteObjective(ctx context.Context, ownerID, id string) error
		CountActiveObjectives(ctx context.Context, ownerID string) (int, error)
	}

	NotificationStore interface {
		CreateNotification(ctx context.Context, n core.Notification) error
		ListNotifications(ctx context.Context, ownerID string) ([]core.Notification, error)
		MarkNotificationRead(ctx context.Context, ownerID, id string) error
	}

	RecurringSourceStore interface {
		ListRecurringSources(ctx context.Context, ownerID string) ([]core.RecurringSource, error)
		CreateRecurringSource(ctx context.Context, s core.RecurringSource) error
	}
)
