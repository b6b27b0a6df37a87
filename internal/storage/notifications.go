package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateNotification(ctx context.Context, n core.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, owner_id, message, category, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.OwnerID, n.Message, n.Category, n.Read, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, ownerID string) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, message, category, read, created_at
		FROM notifications WHERE owner_id = ?
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var (
			n       core.Notification
			created string
		)
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Message, &n.Category, &n.Read, &created); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = parseTime(created)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
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

func (r *SQLiteRepository) ListRecurringSources(ctx context.Context, ownerID string) ([]core.RecurringSource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, source_key, label, amount_cents, frequency, created_at
		FROM recurring_sources WHERE owner_id = ?
		ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list recurring sources: %w", err)
	}
	defer rows.Close()

	var sources []core.RecurringSource
	for rows.Next() {
		var (
			s       core.RecurringSource
			created string
		)
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.SourceKey, &s.Label,
			&s.Amount.Cents, &s.Frequency, &created); err != nil {
			return nil, fmt.Errorf("scan recurring source: %w", err)
		}
		s.CreatedAt = parseTime(created)
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SQLiteRepository) CreateRecurringSource(ctx context.Context, s core.RecurringSource) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_sources (id, owner_id, source_key, label, amount_cents, frequency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OwnerID, s.SourceKey, s.Label, s.Amount.Cents, s.Frequency,
		formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert recurring source: %w", err)
	}
	return nil
}

// GetPreferences returns the stored notification preferences, or the default
// (notifications enabled, no channels) when the owner has never saved any.
func (r *SQLiteRepository) GetPreferences(ctx context.Context, ownerID string) (core.Preferences, error) {
	var (
		p        core.Preferences
		channels string
		updated  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT owner_id, notify_enabled, channels, updated_at
		FROM preferences WHERE owner_id = ?`, ownerID).
		Scan(&p.OwnerID, &p.NotifyEnabled, &channels, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Preferences{OwnerID: ownerID, NotifyEnabled: true, Channels: []string{}}, nil
	}
	if err != nil {
		return core.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	p.Channels = decodeTags(channels)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// PutPreferences replaces the owner's preferences wholesale.
func (r *SQLiteRepository) PutPreferences(ctx context.Context, p core.Preferences) error {
	channels := encodeTags(p.Channels)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (owner_id, notify_enabled, channels, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			notify_enabled = excluded.notify_enabled,
			channels = excluded.channels,
			updated_at = excluded.updated_at`,
		p.OwnerID, p.NotifyEnabled, channels, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}

// ListNotifyOptedInOwners returns the owners whose saved preferences have
// notifications enabled. Owners with no preferences row are not included;
// the notification worker only evaluates owners who opted in explicitly.
func (r *SQLiteRepository) ListNotifyOptedInOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner_id FROM preferences WHERE notify_enabled = 1`)
	if err != nil {
		return nil, fmt.Errorf("list opted-in owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}
