package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

const objectiveColumns = `id, owner_id, title, target_cents, current_cents,
	start_date, deadline, category, frequency, priority, note, status,
	created_at, updated_at`

func scanObjective(row interface{ Scan(...any) error }) (core.Objective, error) {
	var (
		o                                 core.Objective
		start, deadline, created, updated string
	)
	err := row.Scan(&o.ID, &o.OwnerID, &o.Title, &o.Target.Cents, &o.Current.Cents,
		&start, &deadline, &o.Category, &o.Frequency, &o.Priority, &o.Note,
		&o.Status, &created, &updated)
	if err != nil {
		return core.Objective{}, err
	}
	o.StartDate = parseTime(start)
	o.Deadline = parseTime(deadline)
	o.CreatedAt = parseTime(created)
	o.UpdatedAt = parseTime(updated)
	return o, nil
}

func (r *SQLiteRepository) CreateObjective(ctx context.Context, o core.Objective) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO objectives (id, owner_id, title, target_cents, current_cents,
			start_date, deadline, category, frequency, priority, note, status,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OwnerID, o.Title, o.Target.Cents, o.Current.Cents,
		formatTime(o.StartDate), formatTime(o.Deadline), o.Category, o.Frequency,
		o.Priority, o.Note, o.Status, formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert objective: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetObjective(ctx context.Context, ownerID, id string) (core.Objective, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+objectiveColumns+`
		FROM objectives WHERE id = ? AND owner_id = ?`, id, ownerID)
	o, err := scanObjective(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Objective{}, core.ErrNotFound
	}
	if err != nil {
		return core.Objective{}, fmt.Errorf("get objective: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) ListObjectives(ctx context.Context, ownerID string) ([]core.Objective, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+objectiveColumns+`
		FROM objectives WHERE owner_id = ?
		ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	defer rows.Close()

	var objectives []core.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}

func (r *SQLiteRepository) UpdateObjective(ctx context.Context, o core.Objective) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE objectives
		SET title = ?, target_cents = ?, current_cents = ?, start_date = ?,
			deadline = ?, category = ?, frequency = ?, priority = ?, note = ?,
			status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		o.Title, o.Target.Cents, o.Current.Cents, formatTime(o.StartDate),
		formatTime(o.Deadline), o.Category, o.Frequency, o.Priority, o.Note,
		o.Status, formatTime(o.UpdatedAt), o.ID, o.OwnerID)
	if err != nil {
		return fmt.Errorf("update objective: %w", err)
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

func (r *SQLiteRepository) DeleteObjective(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM objectives WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete objective: %w", err)
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

func (r *SQLiteRepository) CountActiveObjectives(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM objectives WHERE owner_id = ? AND status = ?`,
		ownerID, core.ObjectiveActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active objectives: %w", err)
	}
	return count, nil
}
