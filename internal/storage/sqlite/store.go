// Package sqlite provides a SQLite-backed local save slot store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/dungeon/internal/game/slots"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists save slots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ slots.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite slot store at path and applies embedded migrations.
//
// Precondition: path is non-empty.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m is not closed: closing the driver would close sqlDB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put implements slots.Store.
func (s *Store) Put(ctx context.Context, slot slots.Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(slot.ID)
	if id == "" {
		return fmt.Errorf("slot id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO slots (id, name, saved_at, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   saved_at = excluded.saved_at,
		   data = excluded.data`,
		id, slot.Name, toMillis(slot.Timestamp), string(slot.Data),
	)
	if err != nil {
		return fmt.Errorf("put slot %q: %w", id, err)
	}
	return nil
}

// Get implements slots.Store.
func (s *Store) Get(ctx context.Context, id string) (slots.Slot, error) {
	if err := ctx.Err(); err != nil {
		return slots.Slot{}, err
	}
	var (
		slot    slots.Slot
		savedAt int64
		data    string
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, saved_at, data FROM slots WHERE id = ?`, id,
	).Scan(&slot.ID, &slot.Name, &savedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return slots.Slot{}, fmt.Errorf("get slot %q: %w", id, slots.ErrSlotNotFound)
	}
	if err != nil {
		return slots.Slot{}, fmt.Errorf("get slot %q: %w", id, err)
	}
	slot.Timestamp = fromMillis(savedAt)
	slot.Data = []byte(data)
	return slot, nil
}

// Delete implements slots.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete slot %q: %w", id, slots.ErrSlotNotFound)
	}
	return nil
}

// List implements slots.Store. Slots are returned newest first.
func (s *Store) List(ctx context.Context) ([]slots.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, saved_at, data FROM slots ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	out := []slots.Slot{}
	for rows.Next() {
		var (
			slot    slots.Slot
			savedAt int64
			data    string
		)
		if err := rows.Scan(&slot.ID, &slot.Name, &savedAt, &data); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.Timestamp = fromMillis(savedAt)
		slot.Data = []byte(data)
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return out, nil
}

// Clear implements slots.Store.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM slots`); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	return nil
}
