package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction(id, ownerID string) core.Transaction {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	return core.Transaction{
		ID:           id,
		OwnerID:      ownerID,
		Kind:         core.Expense,
		Amount:       core.Money{Cents: 2_500},
		Category:     "food",
		Description:  "marché",
		Counterparty: "Marché central",
		OccurredOn:   now,
		Payment:      core.PaymentCash,
		Tags:         []string{"courses", "semaine"},
		Recurrence:   core.RecurrenceNone,
		Origin:       core.OriginManual,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := sampleTransaction("t1", "u1")
	if err := repo.CreateTransaction(ctx, want); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != want.Amount.Cents || got.Category != want.Category {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.OccurredOn.Equal(want.OccurredOn) {
		t.Errorf("OccurredOn = %v, want %v", got.OccurredOn, want.OccurredOn)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "courses" {
		t.Errorf("Tags = %v, want %v", got.Tags, want.Tags)
	}

	// Foreign owners see nothing.
	if _, err := repo.GetTransaction(ctx, "u2", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign get error = %v, want %v", err, core.ErrNotFound)
	}
	if err := repo.DeleteTransaction(ctx, "u2", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign delete error = %v, want %v", err, core.ErrNotFound)
	}

	if err := repo.DeleteTransaction(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "u1", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete error = %v, want %v", err, core.ErrNotFound)
	}
}

func TestFilterTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mk := func(id string, kind core.TransactionKind, category string, day int) core.Transaction {
		tx := sampleTransaction(id, "u1")
		tx.Kind = kind
		tx.Category = category
		tx.OccurredOn = time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
		return tx
	}
	for _, tx := range []core.Transaction{
		mk("t1", core.Expense, "food", 1),
		mk("t2", core.Expense, "transport", 10),
		mk("t3", core.Income, "salary", 20),
	} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction %s: %v", tx.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   []string
	}{
		{"no filter", TransactionFilter{}, []string{"t3", "t2", "t1"}},
		{"by kind", TransactionFilter{Kind: core.Expense}, []string{"t2", "t1"}},
		{"by category", TransactionFilter{Category: "transport"}, []string{"t2"}},
		{"from date", TransactionFilter{From: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)}, []string{"t3", "t2"}},
		{"date range", TransactionFilter{
			From: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		}, []string{"t2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FilterTransactions(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatalf("FilterTransactions: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestDeleteTransactionsByKind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := sampleTransaction("t1", "u1")
	income := sampleTransaction("t2", "u1")
	income.Kind = core.Income
	income.Category = "salary"
	for _, tx := range []core.Transaction{expense, income} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	// The income id is in the set but the kind does not match.
	n, err := repo.DeleteTransactions(ctx, "u1", []string{"t1", "t2"}, core.Expense)
	if err != nil {
		t.Fatalf("DeleteTransactions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if _, err := repo.GetTransaction(ctx, "u1", "t2"); err != nil {
		t.Errorf("income row should survive: %v", err)
	}
}

func TestSyncStatusLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateTransaction(ctx, sampleTransaction("t1", "u1")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "t1" {
		t.Fatalf("pending = %v, want [t1]", pending)
	}

	if err := repo.MarkTransactionSynced(ctx, "t1"); err != nil {
		t.Fatalf("MarkTransactionSynced: %v", err)
	}
	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %v, want none", pending)
	}

	// An update marks the row pending again.
	tx, _ := repo.GetTransaction(ctx, "u1", "t1")
	tx.Amount.Cents = 9_900
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, _ = repo.GetPendingSyncTransactions(ctx, 10)
	if len(pending) != 1 {
		t.Errorf("pending after update = %v, want [t1]", pending)
	}
}

func TestHasTransactionWithOrigin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := sampleTransaction("t1", "u1")
	tx.Origin = core.OriginProfile
	tx.Category = "salaire"
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	tests := []struct {
		name     string
		ownerID  string
		origin   core.Origin
		category string
		want     bool
	}{
		{"match", "u1", core.OriginProfile, "salaire", true},
		{"other category", "u1", core.OriginProfile, "freelance", false},
		{"manual origin", "u1", core.OriginManual, "salaire", false},
		{"other owner", "u2", core.OriginProfile, "salaire", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasTransactionWithOrigin(ctx, tt.ownerID, tt.origin, tt.category)
			if err != nil {
				t.Fatalf("HasTransactionWithOrigin: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectiveRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	o := core.Objective{
		ID:        "o1",
		OwnerID:   "u1",
		Title:     "Fonds d'urgence",
		Target:    core.Money{Cents: 500_000},
		Current:   core.Money{Cents: 100_000},
		StartDate: now,
		Deadline:  now.AddDate(0, 6, 0),
		Category:  core.CategoryEmergency,
		Frequency: core.SavingsMonthly,
		Priority:  core.PriorityHigh,
		Note:      "virement auto",
		Status:    core.ObjectiveActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateObjective(ctx, o); err != nil {
		t.Fatalf("CreateObjective: %v", err)
	}

	got, err := repo.GetObjective(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("GetObjective: %v", err)
	}
	if got.Title != o.Title || got.Target.Cents != o.Target.Cents || got.Status != o.Status {
		t.Errorf("got %+v, want %+v", got, o)
	}
	if !got.Deadline.Equal(o.Deadline) {
		t.Errorf("Deadline = %v, want %v", got.Deadline, o.Deadline)
	}

	count, err := repo.CountActiveObjectives(ctx, "u1")
	if err != nil {
		t.Fatalf("CountActiveObjectives: %v", err)
	}
	if count != 1 {
		t.Errorf("active count = %d, want 1", count)
	}

	got.Status = core.ObjectiveArchived
	if err := repo.UpdateObjective(ctx, got); err != nil {
		t.Fatalf("UpdateObjective: %v", err)
	}
	count, _ = repo.CountActiveObjectives(ctx, "u1")
	if count != 0 {
		t.Errorf("active count after archive = %d, want 0", count)
	}

	if _, err := repo.GetObjective(ctx, "u2", "o1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign get error = %v, want %v", err, core.ErrNotFound)
	}
}

func TestNotificationsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	n := core.Notification{
		ID:        "n1",
		OwnerID:   "u1",
		Message:   "No expenses recorded in the last 7 days. Don't forget to log your spending.",
		Category:  core.NotifyWarning,
		CreatedAt: now,
	}
	if err := repo.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	notes, err := repo.ListNotifications(ctx, "u1")
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(notes) != 1 || notes[0].Read {
		t.Fatalf("notes = %v, want one unread", notes)
	}

	if err := repo.MarkNotificationRead(ctx, "u1", "n1"); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	notes, _ = repo.ListNotifications(ctx, "u1")
	if !notes[0].Read {
		t.Error("notification still unread after mark")
	}

	if err := repo.MarkNotificationRead(ctx, "u2", "n1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign mark error = %v, want %v", err, core.ErrNotFound)
	}
}

func TestPreferencesDefaultsAndUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Owners without a stored row default to opted in.
	prefs, err := repo.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if !prefs.NotifyEnabled {
		t.Error("default NotifyEnabled = false, want true")
	}

	// But they do not appear in the opted-in listing until they save.
	owners, err := repo.ListNotifyOptedInOwners(ctx)
	if err != nil {
		t.Fatalf("ListNotifyOptedInOwners: %v", err)
	}
	if len(owners) != 0 {
		t.Errorf("opted-in owners = %v, want none", owners)
	}

	put := core.Preferences{
		OwnerID:       "u1",
		NotifyEnabled: true,
		Channels:      []string{"email", "push"},
		UpdatedAt:     time.Now().UTC(),
	}
	if err := repo.PutPreferences(ctx, put); err != nil {
		t.Fatalf("PutPreferences: %v", err)
	}
	owners, _ = repo.ListNotifyOptedInOwners(ctx)
	if len(owners) != 1 || owners[0] != "u1" {
		t.Errorf("opted-in owners = %v, want [u1]", owners)
	}

	// Channels survive the JSON round trip.
	prefs, err = repo.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPreferences after put: %v", err)
	}
	if len(prefs.Channels) != 2 || prefs.Channels[0] != "email" || prefs.Channels[1] != "push" {
		t.Errorf("Channels = %v, want [email push]", prefs.Channels)
	}

	// Opting out removes the owner from the listing.
	put.NotifyEnabled = false
	put.Channels = nil
	if err := repo.PutPreferences(ctx, put); err != nil {
		t.Fatalf("PutPreferences: %v", err)
	}
	owners, _ = repo.ListNotifyOptedInOwners(ctx)
	if len(owners) != 0 {
		t.Errorf("opted-in owners after opt-out = %v, want none", owners)
	}

	prefs, _ = repo.GetPreferences(ctx, "u1")
	if prefs.NotifyEnabled {
		t.Error("NotifyEnabled = true after opt-out")
	}
}

func TestRecurringSourceUniquePerOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s := core.RecurringSource{
		ID:        "s1",
		OwnerID:   "u1",
		SourceKey: "salaire",
		Label:     "Salaire",
		Amount:    core.Money{Cents: 250_000},
		Frequency: "mensuelle",
		CreatedAt: now,
	}
	if err := repo.CreateRecurringSource(ctx, s); err != nil {
		t.Fatalf("CreateRecurringSource: %v", err)
	}

	dup := s
	dup.ID = "s2"
	if err := repo.CreateRecurringSource(ctx, dup); err == nil {
		t.Error("duplicate source key for the same owner should fail")
	}

	// The same key under another owner is fine.
	other := s
	other.ID = "s3"
	other.OwnerID = "u2"
	if err := repo.CreateRecurringSource(ctx, other); err != nil {
		t.Errorf("CreateRecurringSource for other owner: %v", err)
	}
}
