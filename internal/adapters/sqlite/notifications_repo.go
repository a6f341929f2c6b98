package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

type NotificationsRepository struct {
	db *sql.DB
}

func NewNotificationsRepository(db *sql.DB) *NotificationsRepository {
	return &NotificationsRepository{db: db}
}

const notificationColumns = `id, kind, prayer, title, message, adzan, fired_at`

// Largeur fixe pour que ORDER BY fired_at reste chronologique.
const firedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (r *NotificationsRepository) Record(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications(`+notificationColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, n.ID, string(n.Kind), string(n.Prayer), n.Title, n.Message, string(n.Adzan), n.FiredAt.UTC().Format(firedAtLayout))
	if err != nil {
		return domain.Notification{}, err
	}
	return r.get(ctx, n.ID)
}

func (r *NotificationsRepository) get(ctx context.Context, id string) (domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, ports.ErrNotFound
	}
	return n, err
}

func (r *NotificationsRepository) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications ORDER BY fired_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepository) Latest(ctx context.Context, kind domain.NotificationKind) (domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE kind = ? ORDER BY fired_at DESC LIMIT 1
	`, string(kind))
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, ports.ErrNotFound
	}
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(s rowScanner) (domain.Notification, error) {
	var n domain.Notification
	var kind, prayer, adzan, firedAt string
	if err := s.Scan(&n.ID, &kind, &prayer, &n.Title, &n.Message, &adzan, &firedAt); err != nil {
		return domain.Notification{}, err
	}
	n.Kind = domain.NotificationKind(kind)
	n.Prayer = domain.PrayerKey(prayer)
	n.Adzan = domain.AdzanKind(adzan)
	n.FiredAt, _ = time.Parse(time.RFC3339Nano, firedAt)
	return n, nil
}
