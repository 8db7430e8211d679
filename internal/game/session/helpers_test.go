package session_test

import (
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/session"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	require.TestingT
	Helper()
}

// newGame returns a container on the game screen with a warrior in a fantasy game.
func newGame(t tb) *session.Container {
	t.Helper()
	c := session.NewContainer("player-1").WithClock(fixedClock())
	require.NoError(t, c.Navigate(session.ScreenCharacter))
	_, err := c.CreateCharacter("Brom", character.ClassWarrior, character.GenderMale)
	require.NoError(t, err)
	require.NoError(t, c.Navigate(session.ScreenGenre))
	require.NoError(t, c.SelectGenre("fantasy"))
	require.NoError(t, c.Navigate(session.ScreenGame))
	return c
}
