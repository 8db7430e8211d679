package save

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// ErrNotFound is returned when a save does not exist or has been deleted.
var ErrNotFound = errors.New("save not found")

// ErrDeleted is returned when an upsert targets a soft-deleted save. The
// identifier stays reserved and the record is left unchanged.
var ErrDeleted = errors.New("save deleted")

// ValidationError carries field-level detail for rejected input.
type ValidationError = validation.Error

const (
	maxIDLength          = 100
	maxDisplayNameLength = 50
	maxAchievementLength = 64
)

// Validate reports every rule s breaks. It does not mutate s; call
// Normalize first so identifiers are trimmed and the genre lowercased.
func (s *Session) Validate() error {
	v := &ValidationError{}
	v.Length("saveId", s.SaveID, 1, maxIDLength)
	v.Length("playerId", s.PlayerID, 1, maxIDLength)
	v.Merge("character", s.Character.Validate())
	if _, ok := ParseGenre(string(s.Genre)); !ok {
		v.OneOf("genre", string(s.Genre), GenreNames())
	}
	for i, it := range s.Inventory {
		v.Merge(fmt.Sprintf("inventory[%d]", i), it.Validate())
	}
	for i, q := range s.Log.Active {
		v.Merge(fmt.Sprintf("activeQuests[%d]", i), q.Validate())
	}
	return v.Err()
}

// ValidateSaveID checks a save identifier taken from a request path.
func ValidateSaveID(id string) error {
	v := &ValidationError{}
	v.Length("saveId", id, 1, maxIDLength)
	return v.Err()
}

// ValidatePlayerID checks a player identifier taken from a request path.
func ValidatePlayerID(id string) error {
	v := &ValidationError{}
	v.Length("playerId", id, 1, maxIDLength)
	return v.Err()
}

// ProfileUpdate names the profile fields a player may change. A nil
// DisplayName leaves the name untouched.
type ProfileUpdate struct {
	DisplayName  *string  `json:"displayName,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Validate reports every rule u breaks.
func (u ProfileUpdate) Validate() error {
	v := &ValidationError{}
	if u.DisplayName != nil {
		v.Length("displayName", *u.DisplayName, 1, maxDisplayNameLength)
	}
	for i, a := range u.Achievements {
		v.Length(fmt.Sprintf("achievements[%d]", i), a, 1, maxAchievementLength)
	}
	if u.DisplayName == nil && len(u.Achievements) == 0 {
		v.Addf("profile", "must set displayName or achievements")
	}
	return v.Err()
}
