package save

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service applies validation and timestamps around the repositories.
type Service struct {
	saves    Repository
	profiles ProfileRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Service.
//
// Precondition: saves, profiles and logger must be non-nil.
func NewService(saves Repository, profiles ProfileRepository, logger *zap.Logger) *Service {
	return &Service{saves: saves, profiles: profiles, logger: logger, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upsert validates and stores sess, then touches the owning profile.
// A new record is Active with UpdatedAt set to now; CreatedAt is
// preserved when the save already existed. A profile failure is logged
// and does not fail the save.
//
// Postcondition: returns the normalized saveId, a *ValidationError, or
// ErrDeleted when saveId belongs to a soft-deleted save.
func (s *Service) Upsert(ctx context.Context, sess Session) (string, error) {
	sess.Normalize()
	if err := sess.Validate(); err != nil {
		return "", err
	}
	sess.Character.ClampHealth()

	now := s.now().UTC()
	sess.State = StateActive
	sess.CreatedAt = now
	sess.UpdatedAt = now

	created, err := s.saves.Upsert(ctx, &sess)
	if err != nil {
		return "", fmt.Errorf("upserting save %q: %w", sess.SaveID, err)
	}

	if err := s.profiles.Touch(ctx, sess.PlayerID, now, created); err != nil {
		s.logger.Warn("touching player profile",
			zap.String("player_id", sess.PlayerID),
			zap.Error(err),
		)
	}

	s.logger.Info("game saved",
		zap.String("save_id", sess.SaveID),
		zap.String("player_id", sess.PlayerID),
		zap.Bool("created", created),
	)
	return sess.SaveID, nil
}

// Load returns the active session saveID, or ErrNotFound.
func (s *Service) Load(ctx context.Context, saveID string) (*Session, error) {
	if err := ValidateSaveID(saveID); err != nil {
		return nil, err
	}
	sess, err := s.saves.Get(ctx, saveID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, fmt.Errorf("load %q: %w", saveID, ErrNotFound)
	}
	return sess, nil
}

// ListRecent returns up to RecentLimit active summaries for playerID, newest first.
func (s *Service) ListRecent(ctx context.Context, playerID string) ([]Summary, error) {
	if err := ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	out, err := s.saves.ListRecent(ctx, playerID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("listing saves for %q: %w", playerID, err)
	}
	if out == nil {
		out = []Summary{}
	}
	return out, nil
}

// Delete soft-deletes saveID. The id stays reserved and later upserts fail with ErrDeleted.
func (s *Service) Delete(ctx context.Context, saveID string) error {
	if err := ValidateSaveID(saveID); err != nil {
		return err
	}
	if err := s.saves.SoftDelete(ctx, saveID, s.now().UTC()); err != nil {
		return err
	}
	s.logger.Info("game deleted", zap.String("save_id", saveID))
	return nil
}

// Profile returns the profile for playerID, or ErrNotFound.
func (s *Service) Profile(ctx context.Context, playerID string) (*Profile, error) {
	if err := ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, playerID)
}

// UpdateProfile renames playerID's profile and records achievements, then
// returns the stored profile. The profile must already exist; it is created
// by the player's first save.
func (s *Service) UpdateProfile(ctx context.Context, playerID string, u ProfileUpdate) (*Profile, error) {
	if err := ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.DisplayName != nil {
		if err := s.profiles.SetDisplayName(ctx, playerID, strings.TrimSpace(*u.DisplayName)); err != nil {
			return nil, fmt.Errorf("renaming profile %q: %w", playerID, err)
		}
	}
	for _, a := range u.Achievements {
		if err := s.profiles.AddAchievement(ctx, playerID, strings.TrimSpace(a)); err != nil {
			return nil, fmt.Errorf("recording achievement for %q: %w", playerID, err)
		}
	}
	s.logger.Info("profile updated",
		zap.String("player_id", playerID),
		zap.Int("achievements", len(u.Achievements)),
	)
	return s.profiles.Get(ctx, playerID)
}

// Ping reports the health of the session store.
func (s *Service) Ping(ctx context.Context) error {
	return s.saves.Ping(ctx)
}
