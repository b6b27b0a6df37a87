package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// RecurringImporter materializes a user's declared recurring income sources
// into dated income transactions. Creation goes through the transaction
// service so imported rows ride the same backup pipeline as manual ones.
type RecurringImporter struct {
	sources      RecurringSourceStore
	transactions TransactionStore
	service      *TransactionService
}

func NewRecurringImporter(sources RecurringSourceStore, transactions TransactionStore, service *TransactionService) *RecurringImporter {
	return &RecurringImporter{
		sources:      sources,
		transactions: transactions,
		service:      service,
	}
}

// ImportRecurringIncome creates one income transaction per declared source
// that has a positive amount and no previously imported transaction for the
// same source key. Re-invocation with unchanged sources imports nothing.
//
// The existence check is keyed on (origin, category) only; an amount edit on
// the source does not re-trigger an import. That mirrors the intended
// import-once semantics.
//
// A single entry's failure does not abort the batch; the count of entries
// that did succeed is returned.
func (imp *RecurringImporter) ImportRecurringIncome(ctx context.Context, ownerID string, now time.Time) (int, error) {
	if imp.sources == nil || imp.service == nil {
		return 0, fmt.Errorf("importer not properly initialized")
	}

	entries, err := imp.sources.ListRecurringSources(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list recurring sources: %w", err)
	}

	slog.InfoContext(ctx, "Importing recurring income",
		"owner_id", ownerID,
		"declared", len(entries))

	imported := 0
	for _, entry := range entries {
		if entry.Amount.Cents <= 0 {
			continue
		}

		exists, err := imp.transactions.HasTransactionWithOrigin(ctx, ownerID, core.OriginProfile, entry.SourceKey)
		if err != nil {
			slog.ErrorContext(ctx, "Failed idempotency check for recurring source",
				"source_key", entry.SourceKey,
				"error", err)
			continue
		}
		if exists {
			continue
		}

		tx := core.Transaction{
			OwnerID:      ownerID,
			Kind:         core.Income,
			Amount:       entry.Amount,
			Category:     entry.SourceKey,
			Description:  entry.Label,
			Counterparty: entry.Label,
			OccurredOn:   now,
			Recurring:    true,
			Recurrence:   MapSourceFrequency(entry.Frequency),
			Origin:       core.OriginProfile,
		}

		if _, err := imp.service.CreateTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to import recurring source",
				"source_key", entry.SourceKey,
				"error", err)
			continue
		}

		imported++
		slog.InfoContext(ctx, "Imported recurring income source",
			"source_key", entry.SourceKey,
			"amount_cents", entry.Amount.Cents,
			"frequency", entry.Frequency)
	}

	slog.InfoContext(ctx, "Recurring income import complete",
		"owner_id", ownerID,
		"imported", imported,
		"declared", len(entries))

	return imported, nil
}

// MapSourceFrequency translates a profile frequency label into a transaction
// recurrence period. Unknown labels, including "variable", fall back to
// monthly.
func MapSourceFrequency(label string) core.RecurrencePeriod {
	switch label {
	case "mensuelle":
		return core.RecurrenceMonthly
	case "hebdomadaire":
		return core.RecurrenceWeekly
	case "quotidienne":
		return core.RecurrenceDaily
	default:
		return core.RecurrenceMonthly
	}
}
