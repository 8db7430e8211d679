package session

import (
	"fmt"
	"slices"
)

// Screen is the top-level view the player is on.
type Screen string

const (
	ScreenIntro     Screen = "intro"
	ScreenCharacter Screen = "character"
	ScreenGenre     Screen = "genre"
	ScreenGame      Screen = "game"
	ScreenSettings  Screen = "settings"
)

// transitions lists the legal moves out of every screen except settings,
// which always returns to the screen it was opened from or to intro.
var transitions = map[Screen][]Screen{
	ScreenIntro:     {ScreenCharacter, ScreenSettings},
	ScreenCharacter: {ScreenGenre, ScreenIntro, ScreenSettings},
	ScreenGenre:     {ScreenGame, ScreenCharacter, ScreenSettings},
	ScreenGame:      {ScreenSettings, ScreenIntro},
}

// ValidScreen reports whether s names a screen.
func ValidScreen(s Screen) bool {
	_, ok := transitions[s]
	return ok || s == ScreenSettings
}

// TransitionError is returned by Navigate for an illegal move.
type TransitionError struct {
	From Screen
	To   Screen
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from screen %q to %q", e.From, e.To)
}

// allowed reports whether from may move to to. returnTo is the screen
// settings was opened from.
func allowed(from, to, returnTo Screen) bool {
	if from == ScreenSettings {
		if returnTo == "" {
			returnTo = ScreenIntro
		}
		return to == returnTo || to == ScreenIntro
	}
	return slices.Contains(transitions[from], to)
}

// Mode is the play mode while on the game screen.
type Mode string

const (
	ModeExploring Mode = "exploring"
	ModeCombat    Mode = "combat"
	ModeDefeated  Mode = "defeated"
)

// ValidMode reports whether m names a mode.
func ValidMode(m Mode) bool {
	return m == ModeExploring || m == ModeCombat || m == ModeDefeated
}
