package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	SQL *sql.DB
}

// Open ouvre (ou crée) la base et applique les migrations embarquées.
// ":memory:" est accepté pour les tests.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, err
	}

	// Une seule connexion: ":memory:" reste partagée et les écritures du poller
	// et de l'API sont sérialisées.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dbPath, err)
	}

	out := &DB{SQL: db}
	if err := out.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" || strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (d *DB) Close() error {
	return d.SQL.Close()
}

type migration struct {
	version int
	name    string
	up      string
}

// loadMigrations lit migrations/NNN_nom.sql, triées par version.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}

	out := make([]migration, 0, len(names))
	seen := map[int]string{}
	for _, name := range names {
		base := path.Base(name)
		prefix, _, _ := strings.Cut(base, "_")
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid migration name: %s", base)
		}
		if other, dup := seen[v]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %s, %s", v, other, base)
		}
		seen[v] = base

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		out = append(out, migration{version: v, name: base, up: upSection(string(b))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);`); err != nil {
		return err
	}

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}
	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current || strings.TrimSpace(m.up) == "" {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}
	return nil
}

func (d *DB) apply(ctx context.Context, m migration) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)`, m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion renvoie la dernière migration appliquée, 0 sur une base vide.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := d.SQL.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// upSection garde ce qui suit "-- +migrate Up" jusqu'à "-- +migrate Down".
func upSection(text string) string {
	_, after, found := strings.Cut(text, "-- +migrate Up")
	if !found {
		return ""
	}
	up, _, _ := strings.Cut(after, "-- +migrate Down")
	// Reste de la ligne du marqueur.
	if i := strings.IndexByte(up, '\n'); i >= 0 {
		up = up[i+1:]
	} else {
		up = ""
	}
	return up
}
