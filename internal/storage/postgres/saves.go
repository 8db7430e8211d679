package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dungeon/internal/game/save"
)

// SaveRepository stores sessions as JSONB documents. The save_id, player_id,
// state and timestamp columns are authoritative; the same fields inside the
// document are overwritten from them on read.
type SaveRepository struct {
	db *pgxpool.Pool
}

var _ save.Repository = (*SaveRepository)(nil)

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Upsert implements save.Repository.
//
// Postcondition: s.CreatedAt holds the stored creation time.
func (r *SaveRepository) Upsert(ctx context.Context, s *save.Session) (bool, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("encoding save %q: %w", s.SaveID, err)
	}

	var (
		createdAt time.Time
		inserted  bool
	)
	err = r.db.QueryRow(ctx,
		`INSERT INTO saves (save_id, player_id, state, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (save_id) DO UPDATE SET
		     player_id  = EXCLUDED.player_id,
		     document   = EXCLUDED.document,
		     updated_at = EXCLUDED.updated_at
		 WHERE saves.state <> 'deleted'
		 RETURNING created_at, (xmax = 0) AS inserted`,
		s.SaveID, s.PlayerID, string(s.State), string(doc), s.CreatedAt, s.UpdatedAt,
	).Scan(&createdAt, &inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("upsert %q: %w", s.SaveID, save.ErrDeleted)
	}
	if err != nil {
		return false, fmt.Errorf("upserting save %q: %w", s.SaveID, err)
	}
	s.CreatedAt = createdAt.UTC()
	return inserted, nil
}

// Get implements save.Repository.
func (r *SaveRepository) Get(ctx context.Context, saveID string) (*save.Session, error) {
	var (
		doc                  []byte
		playerID, state      string
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT player_id, state, document, created_at, updated_at
		 FROM saves WHERE save_id = $1`,
		saveID,
	).Scan(&playerID, &state, &doc, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", saveID, save.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying save %q: %w", saveID, err)
	}

	var s save.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("decoding save %q: %w", saveID, err)
	}
	s.SaveID = saveID
	s.PlayerID = playerID
	s.State = save.State(state)
	s.CreatedAt = createdAt.UTC()
	s.UpdatedAt = updatedAt.UTC()
	return &s, nil
}

// ListRecent implements save.Repository.
func (r *SaveRepository) ListRecent(ctx context.Context, playerID string, limit int) ([]save.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT save_id,
		        COALESCE(document->'character'->>'name', ''),
		        COALESCE((document->'character'->>'level')::int, 1),
		        COALESCE(document->>'genre', ''),
		        updated_at
		 FROM saves
		 WHERE player_id = $1 AND state = 'active'
		 ORDER BY updated_at DESC, save_id
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saves for %q: %w", playerID, err)
	}
	defer rows.Close()

	out := []save.Summary{}
	for rows.Next() {
		var (
			sum   save.Summary
			genre string
		)
		if err := rows.Scan(&sum.SaveID, &sum.CharacterName, &sum.Level, &genre, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning save summary: %w", err)
		}
		sum.Genre = save.Genre(genre)
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating save summaries: %w", err)
	}
	return out, nil
}

// SoftDelete implements save.Repository.
func (r *SaveRepository) SoftDelete(ctx context.Context, saveID string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE saves SET state = 'deleted', updated_at = $2 WHERE save_id = $1`,
		saveID, at,
	)
	if err != nil {
		return fmt.Errorf("deleting save %q: %w", saveID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %q: %w", saveID, save.ErrNotFound)
	}
	return nil
}

// Ping implements save.Repository.
func (r *SaveRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
