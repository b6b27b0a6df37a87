package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

const (
	// maxCandidatesPerRun caps how many notifications a single evaluation
	// may emit; overflow candidates are dropped, not queued.
	maxCandidatesPerRun = 3

	recentExpenseWindow = 7 * 24 * time.Hour
	deadlineWindow      = 7 * 24 * time.Hour
	overspendRatio      = 0.8
)

// EvaluateNotifications applies the time-windowed notification rules to one
// user's records and returns at most maxCandidatesPerRun candidates, in rule
// order: inactivity, then deadlines in objective order, then overspending.
// It is a pure decision function; persistence is the caller's concern.
func EvaluateNotifications(transactions []core.Transaction, objectives []core.Objective, now time.Time) []core.NotificationCandidate {
	var candidates []core.NotificationCandidate

	// Rule A: no expense recorded in the trailing 7 days (inclusive).
	cutoff := now.Add(-recentExpenseWindow)
	recentExpense := false
	for _, tx := range transactions {
		if !tx.Kind.Valid() || tx.Amount.Cents < 0 {
			continue
		}
		if tx.Kind == core.Expense && !tx.OccurredOn.Before(cutoff) && !tx.OccurredOn.After(now) {
			recentExpense = true
			break
		}
	}
	if !recentExpense {
		candidates = append(candidates, core.NotificationCandidate{
			Message:  "No expenses recorded in the last 7 days. Don't forget to log your spending.",
			Category: core.NotifyWarning,
		})
	}

	// Rule B: objectives whose deadline is at most 7 days away, overdue
	// ones included.
	limit := now.Add(deadlineWindow)
	for _, o := range objectives {
		if o.Deadline.IsZero() || o.Deadline.After(limit) {
			continue
		}
		candidates = append(candidates, core.NotificationCandidate{
			Message:  fmt.Sprintf("The deadline for %q is less than a week away.", o.Title),
			Category: core.NotifySuccess,
		})
	}

	// Rule C: overspending across the whole ledger, not just the window.
	var income, expense int64
	for _, tx := range transactions {
		if !tx.Kind.Valid() || tx.Amount.Cents < 0 {
			continue
		}
		switch tx.Kind {
		case core.Income:
			income += tx.Amount.Cents
		case core.Expense:
			expense += tx.Amount.Cents
		}
	}
	if float64(expense) > float64(income)*overspendRatio {
		candidates = append(candidates, core.NotificationCandidate{
			Message:  "Your expenses exceed 80% of your income. Watch your budget.",
			Category: core.NotifyWarning,
		})
	}

	if len(candidates) > maxCandidatesPerRun {
		candidates = candidates[:maxCandidatesPerRun]
	}
	return candidates
}
