package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/services"
)

// OwnerLister returns the owners whose preferences opt into notifications.
type OwnerLister interface {
	ListNotifyOptedInOwners(ctx context.Context) ([]string, error)
}

// NotifyWorker runs the notification rules for every opted-in owner. Each
// batch evaluates owners concurrently with a bounded degree of parallelism.
type NotifyWorker struct {
	owners      OwnerLister
	notifier    *services.Notifier
	concurrency int
}

func NewNotifyWorker(owners OwnerLister, notifier *services.Notifier, concurrency int) *NotifyWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &NotifyWorker{
		owners:      owners,
		notifier:    notifier,
		concurrency: concurrency,
	}
}

// RunBatch evaluates all opted-in owners once. A failing owner does not stop
// the batch; the first error is reported after every owner has been tried.
func (w *NotifyWorker) RunBatch(ctx context.Context, now time.Time) error {
	ownerIDs, err := w.owners.ListNotifyOptedInOwners(ctx)
	if err != nil {
		return fmt.Errorf("list opted-in owners: %w", err)
	}

	if len(ownerIDs) == 0 {
		slog.InfoContext(ctx, "No opted-in owners to evaluate")
		return nil
	}

	slog.InfoContext(ctx, "Starting notification batch",
		"owners", len(ownerIDs),
		"concurrency", w.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	var (
		mu       sync.Mutex
		firstErr error
	)
	for _, ownerID := range ownerIDs {
		ownerID := ownerID
		g.Go(func() error {
			if _, err := w.notifier.EvaluateAndRecord(gctx, ownerID, now); err != nil {
				slog.ErrorContext(gctx, "Notification evaluation failed",
					"owner_id", ownerID,
					"error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
			// Errors are per-owner, never batch-fatal.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Notification batch complete", "owners", len(ownerIDs))
	return firstErr
}

// Run evaluates batches on the given interval until the context is canceled.
// One batch runs immediately at startup.
func (w *NotifyWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.RunBatch(ctx, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "Initial notification batch failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunBatch(ctx, time.Now().UTC()); err != nil {
				slog.ErrorContext(ctx, "Notification batch failed", "error", err)
			}
		}
	}
}
