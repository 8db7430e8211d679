// Package savetest holds fixtures and a behavioural contract shared by every
// save.Repository implementation.
package savetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/save"
)

// NewSession returns a valid, normalized session.
func NewSession(saveID, playerID string) save.Session {
	s := save.Session{
		SaveID:   saveID,
		PlayerID: playerID,
		Character: character.Character{
			Name: "Aria", Class: character.ClassMage, Gender: character.GenderFemale,
			Level: 1, Health: 100, MaxHealth: 100, Stats: character.DefaultStats(),
		},
		Genre: save.GenreFantasy,
		Events: []save.Event{{
			ID: "evt_1", Text: "You wake in a quiet village.",
			Choices: []string{"Go left", "Go right", "Wait"}, Timestamp: time.Unix(1700000000, 0).UTC(),
		}},
		Inventory: inventory.Inventory{{ID: "health_potion", Name: "Health Potion", Category: inventory.CategoryPotion, Quantity: 2}},
		State:     save.StateActive,
	}
	s.Normalize()
	return s
}

// RunRepositoryContract exercises newRepo against the behaviour every
// save.Repository must share.
func RunRepositoryContract(t *testing.T, newRepo func(t *testing.T) save.Repository) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("upsert then get", func(t *testing.T) {
		repo := newRepo(t)
		s := NewSession("save-a", "player-1")
		s.CreatedAt, s.UpdatedAt = base, base

		created, err := repo.Upsert(ctx, &s)
		require.NoError(t, err)
		assert.True(t, created)

		got, err := repo.Get(ctx, "save-a")
		require.NoError(t, err)
		assert.Equal(t, "Aria", got.Character.Name)
		assert.Equal(t, save.StateActive, got.State)
		assert.Len(t, got.Inventory, 1)
		assert.True(t, got.CreatedAt.Equal(base))
	})

	t.Run("second upsert overwrites and keeps createdAt", func(t *testing.T) {
		repo := newRepo(t)
		first := NewSession("save-b", "player-1")
		first.CreatedAt, first.UpdatedAt = base, base
		_, err := repo.Upsert(ctx, &first)
		require.NoError(t, err)

		second := NewSession("save-b", "player-1")
		second.Character.Level = 7
		later := base.Add(time.Hour)
		second.CreatedAt, second.UpdatedAt = later, later
		created, err := repo.Upsert(ctx, &second)
		require.NoError(t, err)
		assert.False(t, created)
		assert.True(t, second.CreatedAt.Equal(base), "createdAt reported back to caller")

		got, err := repo.Get(ctx, "save-b")
		require.NoError(t, err)
		assert.Equal(t, 7, got.Character.Level)
		assert.True(t, got.CreatedAt.Equal(base))
		assert.True(t, got.UpdatedAt.Equal(later))
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newRepo(t).Get(ctx, "nope")
		assert.ErrorIs(t, err, save.ErrNotFound)
	})

	t.Run("soft delete keeps record", func(t *testing.T) {
		repo := newRepo(t)
		s := NewSession("save-c", "player-1")
		s.CreatedAt, s.UpdatedAt = base, base
		_, err := repo.Upsert(ctx, &s)
		require.NoError(t, err)

		require.NoError(t, repo.SoftDelete(ctx, "save-c", base.Add(time.Minute)))
		got, err := repo.Get(ctx, "save-c")
		require.NoError(t, err)
		assert.Equal(t, save.StateDeleted, got.State)

		assert.ErrorIs(t, repo.SoftDelete(ctx, "missing", base), save.ErrNotFound)
	})

	t.Run("upsert over a deleted save is refused", func(t *testing.T) {
		repo := newRepo(t)
		s := NewSession("save-d", "player-1")
		s.CreatedAt, s.UpdatedAt = base, base
		_, err := repo.Upsert(ctx, &s)
		require.NoError(t, err)
		require.NoError(t, repo.SoftDelete(ctx, "save-d", base.Add(time.Minute)))

		again := NewSession("save-d", "player-9")
		again.Character.Level = 9
		later := base.Add(time.Hour)
		again.CreatedAt, again.UpdatedAt = later, later
		created, err := repo.Upsert(ctx, &again)
		assert.ErrorIs(t, err, save.ErrDeleted)
		assert.False(t, created)

		got, err := repo.Get(ctx, "save-d")
		require.NoError(t, err)
		assert.Equal(t, save.StateDeleted, got.State)
		assert.Equal(t, "player-1", got.PlayerID)
		assert.Equal(t, 1, got.Character.Level)
	})

	t.Run("list recent is active only newest first and capped", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 12; i++ {
			s := NewSession(fmt.Sprintf("save-%02d", i), "player-2")
			at := base.Add(time.Duration(i) * time.Minute)
			s.CreatedAt, s.UpdatedAt = at, at
			_, err := repo.Upsert(ctx, &s)
			require.NoError(t, err)
		}
		other := NewSession("save-other", "player-3")
		other.CreatedAt, other.UpdatedAt = base, base
		_, err := repo.Upsert(ctx, &other)
		require.NoError(t, err)
		require.NoError(t, repo.SoftDelete(ctx, "save-11", base))

		got, err := repo.ListRecent(ctx, "player-2", save.RecentLimit)
		require.NoError(t, err)
		require.Len(t, got, save.RecentLimit)
		assert.Equal(t, "save-10", got[0].SaveID)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].UpdatedAt.After(got[i-1].UpdatedAt), "summaries must be newest first")
		}
		for _, s := range got {
			assert.NotEqual(t, "save-11", s.SaveID)
			assert.Equal(t, "Aria", s.CharacterName)
		}
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}

// RunProfileContract exercises newRepo against the behaviour every
// save.ProfileRepository must share.
func RunProfileContract(t *testing.T, newRepo func(t *testing.T) save.ProfileRepository) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("touch creates and counts new saves only", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Touch(ctx, "p1", base, true))
		require.NoError(t, repo.Touch(ctx, "p1", base.Add(time.Hour), false))
		require.NoError(t, repo.Touch(ctx, "p1", base.Add(2*time.Hour), true))

		p, err := repo.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 2, p.PlayCount)
		assert.True(t, p.CreatedAt.Equal(base))
		assert.True(t, p.LastPlayed.Equal(base.Add(2*time.Hour)))
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newRepo(t).Get(ctx, "ghost")
		assert.ErrorIs(t, err, save.ErrNotFound)
	})

	t.Run("display name and achievements", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Touch(ctx, "p2", base, true))
		require.NoError(t, repo.SetDisplayName(ctx, "p2", "Aria"))
		require.NoError(t, repo.AddAchievement(ctx, "p2", "first_blood"))
		require.NoError(t, repo.AddAchievement(ctx, "p2", "first_blood"))

		p, err := repo.Get(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, "Aria", p.DisplayName)
		assert.Equal(t, []string{"first_blood"}, p.Achievements)

		assert.ErrorIs(t, repo.SetDisplayName(ctx, "ghost", "x"), save.ErrNotFound)
		assert.ErrorIs(t, repo.AddAchievement(ctx, "ghost", "x"), save.ErrNotFound)
	})
}
