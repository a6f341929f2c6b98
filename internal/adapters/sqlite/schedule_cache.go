package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// ScheduleCache conserve le dernier horaire valide par date.
type ScheduleCache struct {
	db *sql.DB
}

func NewScheduleCache(db *sql.DB) *ScheduleCache {
	return &ScheduleCache{db: db}
}

func (c *ScheduleCache) Get(ctx context.Context, date string) (domain.DailySchedule, error) {
	var b []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload_json FROM schedules WHERE date = ?`, date).Scan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DailySchedule{}, ports.ErrNotFound
		}
		return domain.DailySchedule{}, err
	}
	var sched domain.DailySchedule
	// Unmarshal passe par NewSchedule: une ligne invalide est traitée comme absente.
	if err := json.Unmarshal(b, &sched); err != nil {
		return domain.DailySchedule{}, ports.ErrNotFound
	}
	return sched, nil
}

func (c *ScheduleCache) Put(ctx context.Context, sched domain.DailySchedule) error {
	b, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO schedules(date, source, payload_json, fetched_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET source = excluded.source, payload_json = excluded.payload_json, fetched_at = excluded.fetched_at
	`, sched.Date, string(sched.Source), b, sched.FetchedAt.UTC().Format(time.RFC3339))
	return err
}

// Prune supprime les dates strictement antérieures à before.
func (c *ScheduleCache) Prune(ctx context.Context, before string) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM schedules WHERE date < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
