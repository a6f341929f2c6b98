package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

const lastReadKey = "user"

type LastReadRepository struct {
	db *sql.DB
}

func NewLastReadRepository(db *sql.DB) *LastReadRepository {
	return &LastReadRepository{db: db}
}

func (r *LastReadRepository) Get(ctx context.Context) (domain.LastRead, error) {
	var lr domain.LastRead
	var updatedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT surah_number, surah_name, ayah, updated_at FROM last_read WHERE key = ?
	`, lastReadKey).Scan(&lr.SurahNumber, &lr.SurahName, &lr.Ayah, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LastRead{}, ports.ErrNotFound
		}
		return domain.LastRead{}, err
	}
	lr.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return lr, nil
}

func (r *LastReadRepository) Put(ctx context.Context, lr domain.LastRead) (domain.LastRead, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO last_read(key, surah_number, surah_name, ayah, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET surah_number = excluded.surah_number, surah_name = excluded.surah_name,
			ayah = excluded.ayah, updated_at = excluded.updated_at
	`, lastReadKey, lr.SurahNumber, lr.SurahName, lr.Ayah, lr.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return domain.LastRead{}, err
	}
	return r.Get(ctx)
}
