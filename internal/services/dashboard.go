package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// DashboardService computes dashboard snapshots from the two stores.
type DashboardService struct {
	transactions TransactionStore
	objectives   ObjectiveStore
}

func NewDashboardService(transactions TransactionStore, objectives ObjectiveStore) *DashboardService {
	return &DashboardService{
		transactions: transactions,
		objectives:   objectives,
	}
}

// ComputeDashboard pulls the owner's records and aggregates them. The
// snapshot is derived on demand and never persisted.
func (s *DashboardService) ComputeDashboard(ctx context.Context, ownerID string) (core.DashboardSnapshot, error) {
	transactions, err := s.transactions.ListTransactions(ctx, ownerID)
	if err != nil {
		return core.DashboardSnapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	objectives, err := s.objectives.ListObjectives(ctx, ownerID)
	if err != nil {
		return core.DashboardSnapshot{}, fmt.Errorf("list objectives: %w", err)
	}
	return Aggregate(transactions, objectives), nil
}
