package session

import "github.com/cory-johannsen/dungeon/internal/game/validation"

// Languages lists the supported interface languages.
var Languages = []string{"English", "Kannada", "Telugu"}

// Settings are the player's preferences. They survive Reset.
type Settings struct {
	Language     string `json:"language"`
	TextSpeed    int    `json:"textSpeed"`
	SoundEnabled bool   `json:"soundEnabled"`
	MusicEnabled bool   `json:"musicEnabled"`
}

// DefaultSettings returns the settings of a fresh container.
func DefaultSettings() Settings {
	return Settings{Language: "English", TextSpeed: 50, SoundEnabled: true, MusicEnabled: true}
}

// Validate checks the language and that text speed is 1-100.
//
// Postcondition: returns nil or a *validation.Error.
func (s Settings) Validate() error {
	v := &validation.Error{}
	v.OneOf("language", s.Language, Languages)
	v.Range("textSpeed", s.TextSpeed, 1, 100)
	return v.Err()
}

// Settings returns the current settings.
func (c *Container) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings replaces the settings after validating s.
func (c *Container) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	return nil
}
