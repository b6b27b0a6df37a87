package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const transactionColumns = `id, owner_id, kind, amount_cents, category, description,
	counterparty, occurred_on, payment_method, tags, recurring, recurrence_period,
	origin, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		tx                                 core.Transaction
		occurredOn, tags, created, updated string
		recurring                          int
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Kind, &tx.Amount.Cents, &tx.Category,
		&tx.Description, &tx.Counterparty, &occurredOn, &tx.Payment, &tags,
		&recurring, &tx.Recurrence, &tx.Origin, &created, &updated)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.OccurredOn = parseTime(occurredOn)
	tx.Tags = decodeTags(tags)
	tx.Recurring = recurring != 0
	tx.CreatedAt = parseTime(created)
	tx.UpdatedAt = parseTime(updated)
	return tx, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	recurring := 0
	if tx.Recurring {
		recurring = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, kind, amount_cents, category,
			description, counterparty, occurred_on, payment_method, tags,
			recurring, recurrence_period, origin, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.Kind, tx.Amount.Cents, tx.Category,
		tx.Description, tx.Counterparty, formatTime(tx.OccurredOn), tx.Payment,
		encodeTags(tx.Tags), recurring, tx.Recurrence, tx.Origin, SyncPending,
		formatTime(tx.CreatedAt), formatTime(tx.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE owner_id = ?
		ORDER BY occurred_on DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// TransactionFilter narrows a transaction listing. Zero values mean "no
// constraint".
type TransactionFilter struct {
	Kind     core.TransactionKind
	Category string
	From     time.Time
	To       time.Time
}

func (r *SQLiteRepository) FilterTransactions(ctx context.Context, ownerID string, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ?`
	args := []any{ownerID}

	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		query += ` AND occurred_on >= ?`
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND occurred_on <= ?`
		args = append(args, formatTime(f.To))
	}
	query += ` ORDER BY occurred_on DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	recurring := 0
	if tx.Recurring {
		recurring = 1
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET kind = ?, amount_cents = ?, category = ?, description = ?,
			counterparty = ?, occurred_on = ?, payment_method = ?, tags = ?,
			recurring = ?, recurrence_period = ?, sync_status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		tx.Kind, tx.Amount.Cents, tx.Category, tx.Description,
		tx.Counterparty, formatTime(tx.OccurredOn), tx.Payment, encodeTags(tx.Tags),
		recurring, tx.Recurrence, SyncPending, formatTime(tx.UpdatedAt),
		tx.ID, tx.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransactions(ctx context.Context, ownerID string, ids []string, kind core.TransactionKind) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+2)
	args = append(args, ownerID, kind)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ? AND kind = ? AND id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete transactions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *SQLiteRepository) HasTransactionWithOrigin(ctx context.Context, ownerID string, origin core.Origin, category string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM transactions
		WHERE owner_id = ? AND origin = ? AND category = ?`,
		ownerID, origin, category).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check transaction origin: %w", err)
	}
	return count > 0, nil
}

// GetPendingSyncTransactions returns transactions awaiting backup, oldest
// first, for the backup worker's recovery scan.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE sync_status = ?
		ORDER BY created_at ASC LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkTransactionSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}
