package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/game/session"
)

func TestNavigate_IllegalMoves(t *testing.T) {
	c := session.NewContainer("p")
	var terr *session.TransitionError
	require.ErrorAs(t, c.Navigate(session.ScreenGame), &terr)
	assert.Equal(t, session.ScreenIntro, terr.From)
	assert.Equal(t, session.ScreenGame, terr.To)

	require.ErrorAs(t, c.Navigate(session.ScreenGenre), &terr)
	require.ErrorAs(t, c.Navigate("credits"), &terr)
	assert.Equal(t, session.ScreenIntro, c.Screen())
}

func TestNavigate_SameScreenIsNoop(t *testing.T) {
	c := session.NewContainer("p")
	assert.NoError(t, c.Navigate(session.ScreenIntro))
}

func TestNavigate_SettingsReturnsToOrigin(t *testing.T) {
	c := session.NewContainer("p")
	require.NoError(t, c.Navigate(session.ScreenCharacter))
	require.NoError(t, c.Navigate(session.ScreenSettings))

	var terr *session.TransitionError
	require.ErrorAs(t, c.Navigate(session.ScreenGenre), &terr)
	require.NoError(t, c.Navigate(session.ScreenCharacter))
	assert.Equal(t, session.ScreenCharacter, c.Screen())
}

func TestNavigate_SettingsToIntroAlwaysAllowed(t *testing.T) {
	c := newGame(t)
	require.NoError(t, c.Navigate(session.ScreenSettings))
	require.NoError(t, c.Navigate(session.ScreenIntro))
	assert.True(t, c.Started(), "leaving the game does not end it")
}

func TestNavigate_GameRequiresCharacterAndGenre(t *testing.T) {
	c := session.NewContainer("p")
	require.NoError(t, c.Navigate(session.ScreenCharacter))
	require.NoError(t, c.Navigate(session.ScreenGenre))
	assert.ErrorIs(t, c.Navigate(session.ScreenGame), session.ErrNoCharacter)
}

func TestNavigate_GameRequiresGenre(t *testing.T) {
	c := session.NewContainer("p")
	require.NoError(t, c.Navigate(session.ScreenCharacter))
	_, err := c.CreateCharacter("Ana", "rogue", "female")
	require.NoError(t, err)
	require.NoError(t, c.Navigate(session.ScreenGenre))
	assert.ErrorIs(t, c.Navigate(session.ScreenGame), session.ErrNoGenre)
}

func TestNavigate_StartsGameWithOpening(t *testing.T) {
	c := newGame(t)
	assert.True(t, c.Started())
	assert.Equal(t, session.ModeExploring, c.Mode())
	story, choices := c.Story()
	assert.Equal(t, session.OpeningStory, story)
	assert.Equal(t, session.OpeningChoices, choices)
	assert.Len(t, c.Snapshot().Events, 1)
}

func TestNavigate_LeavingGameBumpsGeneration(t *testing.T) {
	c := newGame(t)
	before := c.Generation()
	require.NoError(t, c.Navigate(session.ScreenSettings))
	assert.Greater(t, c.Generation(), before)
}

func TestValidScreenAndMode(t *testing.T) {
	assert.True(t, session.ValidScreen(session.ScreenSettings))
	assert.False(t, session.ValidScreen("map"))
	assert.True(t, session.ValidMode(session.ModeDefeated))
	assert.False(t, session.ValidMode("paused"))
}
