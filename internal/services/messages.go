package services

import (
	"fmt"

	"fintrack/internal/core"
)

// Message thresholds. The two percentage bands are disjoint, so an
// objective triggers at most one of the two messages.
const (
	encourageFloor   = 50
	slowStartCeiling = 20
	spendWarnRatio   = 0.7
)

// Messages derives the advisory strings shown inline on the dashboard.
// Objective messages come first, in snapshot order, followed by the
// spending-ratio warning. These are a separate channel from persisted
// notifications and are never deduplicated against them.
func Messages(snap core.DashboardSnapshot) []string {
	var msgs []string

	for _, o := range snap.Objectives {
		switch {
		case o.Percent >= encourageFloor && o.Percent < 100:
			msgs = append(msgs, fmt.Sprintf("You're %d%% of the way to %q. Keep it up!", o.Percent, o.Title))
		case o.Percent < slowStartCeiling:
			msgs = append(msgs, fmt.Sprintf("Your objective %q is at %d%%. Small regular deposits add up.", o.Title, o.Percent))
		}
	}

	if float64(snap.TotalExpense.Cents) > float64(snap.TotalIncome.Cents)*spendWarnRatio {
		msgs = append(msgs, "You have spent over 70% of your income. Time to slow down.")
	}

	return msgs
}
