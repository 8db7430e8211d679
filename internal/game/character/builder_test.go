package character_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

func TestNew_ClassStartingStats(t *testing.T) {
	tests := []struct {
		class character.Class
		check func(t *testing.T, s character.Stats)
	}{
		{character.ClassWarrior, func(t *testing.T, s character.Stats) {
			assert.Equal(t, 14, s.Strength)
			assert.Equal(t, 12, s.Constitution)
		}},
		{character.ClassMage, func(t *testing.T, s character.Stats) {
			assert.Equal(t, 14, s.Intelligence)
			assert.Equal(t, 8, s.Strength)
		}},
		{character.ClassRogue, func(t *testing.T, s character.Stats) {
			assert.Equal(t, 14, s.Dexterity)
			assert.Equal(t, 12, s.Charisma)
		}},
	}
	for _, tc := range tests {
		t.Run(string(tc.class), func(t *testing.T) {
			c, err := character.New("Hero", tc.class, character.GenderOther)
			require.NoError(t, err)
			assert.Equal(t, 1, c.Level)
			assert.Equal(t, 100, c.Health)
			tc.check(t, c.Stats)
		})
	}
}

func TestNew_NormalizesInput(t *testing.T) {
	c, err := character.New("  Kira ", "Rogue", "FEMALE")
	require.NoError(t, err)
	assert.Equal(t, "Kira", c.Name)
	assert.Equal(t, character.ClassRogue, c.Class)
	assert.Equal(t, character.GenderFemale, c.Gender)
}

func TestNew_UnknownClass(t *testing.T) {
	_, err := character.New("Kira", "bard", character.GenderFemale)
	assert.True(t, errors.Is(err, character.ErrUnknownClass))
}

func TestNew_EmptyName(t *testing.T) {
	_, err := character.New("   ", character.ClassMage, character.GenderMale)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Fields[0].Field)
}
