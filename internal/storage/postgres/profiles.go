package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dungeon/internal/game/save"
)

// ProfileRepository persists player profiles.
type ProfileRepository struct {
	db *pgxpool.Pool
}

var _ save.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a ProfileRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Touch implements save.ProfileRepository. The insert and the play-count
// increment happen in one statement so concurrent saves never lose a count.
func (r *ProfileRepository) Touch(ctx context.Context, playerID string, at time.Time, newSave bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO player_profiles (player_id, created_at, last_played, play_count)
		 VALUES ($1, $2, $2, CASE WHEN $3::boolean THEN 1 ELSE 0 END)
		 ON CONFLICT (player_id) DO UPDATE SET
		     last_played = EXCLUDED.last_played,
		     play_count  = player_profiles.play_count + EXCLUDED.play_count`,
		playerID, at, newSave,
	)
	if err != nil {
		return fmt.Errorf("touching profile %q: %w", playerID, err)
	}
	return nil
}

// Get implements save.ProfileRepository.
func (r *ProfileRepository) Get(ctx context.Context, playerID string) (*save.Profile, error) {
	var (
		p           save.Profile
		displayName *string
	)
	err := r.db.QueryRow(ctx,
		`SELECT player_id, display_name, created_at, last_played, play_count, achievements
		 FROM player_profiles WHERE player_id = $1`,
		playerID,
	).Scan(&p.PlayerID, &displayName, &p.CreatedAt, &p.LastPlayed, &p.PlayCount, &p.Achievements)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile %q: %w", playerID, save.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile %q: %w", playerID, err)
	}
	if displayName != nil {
		p.DisplayName = *displayName
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.LastPlayed = p.LastPlayed.UTC()
	return &p, nil
}

// SetDisplayName updates the display name of an existing profile.
//
// Precondition: name has at most 50 characters.
func (r *ProfileRepository) SetDisplayName(ctx context.Context, playerID, name string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE player_profiles SET display_name = $2 WHERE player_id = $1`,
		playerID, name,
	)
	if err != nil {
		return fmt.Errorf("setting display name for %q: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %q: %w", playerID, save.ErrNotFound)
	}
	return nil
}

// AddAchievement records achievement with set semantics.
func (r *ProfileRepository) AddAchievement(ctx context.Context, playerID, achievement string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE player_profiles
		 SET achievements = array_append(achievements, $2)
		 WHERE player_id = $1 AND NOT ($2 = ANY(achievements))`,
		playerID, achievement,
	)
	if err != nil {
		return fmt.Errorf("adding achievement for %q: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, playerID); err != nil {
			return err
		}
	}
	return nil
}
