package save

import (
	"context"
	"time"
)

// RecentLimit caps ListRecent results.
const RecentLimit = 10

// Repository persists sessions.
type Repository interface {
	// Upsert writes s keyed by s.SaveID. An existing record keeps its
	// CreatedAt; s.CreatedAt is updated to the stored value. Reports
	// whether a new record was created. A soft-deleted record is never
	// overwritten; Upsert returns ErrDeleted instead.
	Upsert(ctx context.Context, s *Session) (created bool, err error)
	// Get returns the record regardless of state, or ErrNotFound.
	Get(ctx context.Context, saveID string) (*Session, error)
	// ListRecent returns up to limit active summaries for playerID, newest first.
	ListRecent(ctx context.Context, playerID string, limit int) ([]Summary, error)
	// SoftDelete marks the record Deleted, or returns ErrNotFound.
	SoftDelete(ctx context.Context, saveID string, at time.Time) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// ProfileRepository persists player profiles.
type ProfileRepository interface {
	// Touch sets LastPlayed to at, creating the profile when absent, and
	// increments PlayCount when newSave is true.
	Touch(ctx context.Context, playerID string, at time.Time, newSave bool) error
	// Get returns the profile, or ErrNotFound.
	Get(ctx context.Context, playerID string) (*Profile, error)
	// SetDisplayName renames an existing profile, or returns ErrNotFound.
	SetDisplayName(ctx context.Context, playerID, name string) error
	// AddAchievement records achievement once, or returns ErrNotFound.
	AddAchievement(ctx context.Context, playerID, achievement string) error
}
