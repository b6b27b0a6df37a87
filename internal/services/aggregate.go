// Package services provides the business logic of the ledger engine:
// dashboard aggregation, advisory messages, notification rules, the
// recurring-income importer and the owner-scoped CRUD services.
package services

import (
	"fintrack/internal/core"
)

// Aggregate computes a dashboard snapshot from one user's transactions and
// objectives. It is a pure function: no side effects, deterministic, and
// order-independent for the totals and the category map. Objective progress
// entries keep the input order so message output is stable.
//
// Malformed records (unknown kind, negative amount) are skipped rather than
// failing the whole aggregation; one corrupt historical row must not take
// the dashboard down.
func Aggregate(transactions []core.Transaction, objectives []core.Objective) core.DashboardSnapshot {
	snap := core.DashboardSnapshot{
		ByCategory: make(map[string]core.Money),
	}

	for _, tx := range transactions {
		if !tx.Kind.Valid() || tx.Amount.Cents < 0 {
			continue
		}
		switch tx.Kind {
		case core.Income:
			snap.TotalIncome.Cents += tx.Amount.Cents
		case core.Expense:
			snap.TotalExpense.Cents += tx.Amount.Cents
			c := snap.ByCategory[tx.Category]
			c.Cents += tx.Amount.Cents
			snap.ByCategory[tx.Category] = c
		}
	}
	snap.Savings.Cents = snap.TotalIncome.Cents - snap.TotalExpense.Cents

	snap.Objectives = make([]core.ObjectiveProgress, 0, len(objectives))
	for _, o := range objectives {
		snap.Objectives = append(snap.Objectives, core.ObjectiveProgress{
			ID:       o.ID,
			Title:    o.Title,
			Percent:  o.ProgressPercent(),
			Target:   o.Target,
			Current:  o.Current,
			Deadline: o.Deadline,
		})
	}

	snap.Messages = Messages(snap)
	return snap
}
