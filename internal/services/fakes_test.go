package services

import (
	"context"

	"fintrack/internal/core"
)

// In-memory stores for service tests. They keep insertion order, which the
// tests rely on.

type fakeTransactionStore struct {
	txs []core.Transaction
}

func (f *fakeTransactionStore) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) GetTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	for _, tx := range f.txs {
		if tx.OwnerID == ownerID && tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeTransactionStore) CreateTransaction(_ context.Context, tx core.Transaction) error {
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeTransactionStore) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	for i := range f.txs {
		if f.txs[i].OwnerID == tx.OwnerID && f.txs[i].ID == tx.ID {
			f.txs[i] = tx
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeTransactionStore) DeleteTransaction(_ context.Context, ownerID, id string) error {
	for i := range f.txs {
		if f.txs[i].OwnerID == ownerID && f.txs[i].ID == id {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeTransactionStore) DeleteTransactions(_ context.Context, ownerID string, ids []string, kind core.TransactionKind) (int, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	kept := f.txs[:0]
	deleted := 0
	for _, tx := range f.txs {
		if tx.OwnerID == ownerID && wanted[tx.ID] && tx.Kind == kind {
			deleted++
			continue
		}
		kept = append(kept, tx)
	}
	f.txs = kept
	return deleted, nil
}

func (f *fakeTransactionStore) HasTransactionWithOrigin(_ context.Context, ownerID string, origin core.Origin, category string) (bool, error) {
	for _, tx := range f.txs {
		if tx.OwnerID == ownerID && tx.Origin == origin && tx.Category == category {
			return true, nil
		}
	}
	return false, nil
}

type fakeObjectiveStore struct {
	objs []core.Objective
}

func (f *fakeObjectiveStore) ListObjectives(_ context.Context, ownerID string) ([]core.Objective, error) {
	var out []core.Objective
	for _, o := range f.objs {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeObjectiveStore) GetObjective(_ context.Context, ownerID, id string) (core.Objective, error) {
	for _, o := range f.objs {
		if o.OwnerID == ownerID && o.ID == id {
			return o, nil
		}
	}
	return core.Objective{}, core.ErrNotFound
}

func (f *fakeObjectiveStore) CreateObjective(_ context.Context, o core.Objective) error {
	f.objs = append(f.objs, o)
	return nil
}

func (f *fakeObjectiveStore) UpdateObjective(_ context.Context, o core.Objective) error {
	for i := range f.objs {
		if f.objs[i].OwnerID == o.OwnerID && f.objs[i].ID == o.ID {
			f.objs[i] = o
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeObjectiveStore) DeleteObjective(_ context.Context, ownerID, id string) error {
	for i := range f.objs {
		if f.objs[i].OwnerID == ownerID && f.objs[i].ID == id {
			f.objs = append(f.objs[:i], f.objs[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeObjectiveStore) CountActiveObjectives(_ context.Context, ownerID string) (int, error) {
	n := 0
	for _, o := range f.objs {
		if o.OwnerID == ownerID && o.Status == core.ObjectiveActive {
			n++
		}
	}
	return n, nil
}

type fakeNotificationStore struct {
	notes []core.Notification
}

func (f *fakeNotificationStore) CreateNotification(_ context.Context, n core.Notification) error {
	f.notes = append(f.notes, n)
	return nil
}

func (f *fakeNotificationStore) ListNotifications(_ context.Context, ownerID string) ([]core.Notification, error) {
	var out []core.Notification
	for _, n := range f.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkNotificationRead(_ context.Context, ownerID, id string) error {
	for i := range f.notes {
		if f.notes[i].OwnerID == ownerID && f.notes[i].ID == id {
			f.notes[i].Read = true
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeRecurringSourceStore struct {
	sources []core.RecurringSource
}

func (f *fakeRecurringSourceStore) ListRecurringSources(_ context.Context, ownerID string) ([]core.RecurringSource, error) {
	var out []core.RecurringSource
	for _, s := range f.sources {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRecurringSourceStore) CreateRecurringSource(_ context.Context, s core.RecurringSource) error {
	f.sources = append(f.sources, s)
	return nil
}
