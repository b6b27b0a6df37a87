package core

import "time"

// ObjectiveProgress is the per-objective slice of a dashboard snapshot.
type ObjectiveProgress struct {
	ID       string
	Title    string
	Percent  int
	Target   Money
	Current  Money
	Deadline time.Time
}

// DashboardSnapshot is the derived, non-persisted view of one user's
// finances at a point in time. Savings may be negative.
type DashboardSnapshot struct {
	TotalIncome  Money
	TotalExpense Money
	Savings      Money
	ByCategory   map[string]Money
	Objectives   []ObjectiveProgress
	Messages     []string
}

// NotificationCandidate is a rule-engine output considered for persistence,
// subject to the per-run cap.
type NotificationCandidate struct {
	Message  string
	Category NotificationCategory
}
