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

// Notifier wraps the pure rule evaluation with persistence and fan-out.
// An external scheduler invokes it once per opted-in user per day.
type Notifier struct {
	transactions TransactionStore
	objectives   ObjectiveStore
	store        NotificationStore
	amqpClient   *amqp.Client
}

func NewNotifier(transactions TransactionStore, objectives ObjectiveStore, store NotificationStore, amqpClient *amqp.Client) *Notifier {
	return &Notifier{
		transactions: transactions,
		objectives:   objectives,
		store:        store,
		amqpClient:   amqpClient,
	}
}

// EvaluateAndRecord runs the notification rules for one user and persists
// the kept candidates as unread notifications. Each persisted notification
// is also published for external delivery collaborators; publish failures
// are logged, never propagated.
func (n *Notifier) EvaluateAndRecord(ctx context.Context, ownerID string, now time.Time) ([]core.Notification, error) {
	transactions, err := n.transactions.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	objectives, err := n.objectives.ListObjectives(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}

	candidates := EvaluateNotifications(transactions, objectives, now)
	if len(candidates) == 0 {
		return nil, nil
	}

	notifications := make([]core.Notification, 0, len(candidates))
	for _, c := range candidates {
		notification := core.Notification{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			Message:   c.Message,
			Category:  c.Category,
			Read:      false,
			CreatedAt: now,
		}
		if err := n.store.CreateNotification(ctx, notification); err != nil {
			slog.ErrorContext(ctx, "Failed to persist notification",
				"owner_id", ownerID,
				"category", c.Category,
				"error", err)
			continue
		}
		notifications = append(notifications, notification)

		if n.amqpClient != nil {
			if err := n.amqpClient.PublishNotification(ctx, notification); err != nil {
				slog.ErrorContext(ctx, "Failed to publish notification",
					"id", notification.ID,
					"error", err)
			}
		}
	}

	slog.InfoContext(ctx, "Notification evaluation complete",
		"owner_id", ownerID,
		"candidates", len(candidates),
		"recorded", len(notifications))

	return notifications, nil
}
