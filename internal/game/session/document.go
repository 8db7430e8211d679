package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/quest"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// DocumentVersion is written into every Document.
const DocumentVersion = 1

// Document is the serializable form of a Container, stored in local slots.
type Document struct {
	Version             int                  `json:"version"`
	SaveID              string               `json:"saveId"`
	PlayerID            string               `json:"playerId"`
	Screen              Screen               `json:"screen"`
	ReturnTo            Screen               `json:"returnTo,omitempty"`
	Mode                Mode                 `json:"mode"`
	Started             bool                 `json:"gameStarted"`
	Genre               save.Genre           `json:"genre,omitempty"`
	Character           *character.Character `json:"character,omitempty"`
	Inventory           inventory.Inventory  `json:"inventory"`
	Events              []save.Event         `json:"events"`
	CurrentStory        string               `json:"currentStory"`
	Choices             []string             `json:"choices"`
	Enemy               *combat.Enemy        `json:"enemy,omitempty"`
	quest.Log
	CurrentLocation     string               `json:"currentLocation"`
	DiscoveredLocations []string             `json:"discoveredLocations"`
	Settings            Settings             `json:"settings"`
}

// Validate checks that d describes a reachable container state.
//
// Postcondition: returns nil or a *validation.Error.
func (d Document) Validate() error {
	v := &validation.Error{}
	if !ValidScreen(d.Screen) {
		v.Addf("screen", "unknown screen %q", d.Screen)
	}
	if d.ReturnTo != "" && (!ValidScreen(d.ReturnTo) || d.ReturnTo == ScreenSettings) {
		v.Addf("returnTo", "unknown screen %q", d.ReturnTo)
	}
	if !ValidMode(d.Mode) {
		v.Addf("mode", "unknown mode %q", d.Mode)
	}
	if d.Genre != "" {
		if _, ok := save.ParseGenre(string(d.Genre)); !ok {
			v.OneOf("genre", string(d.Genre), save.GenreNames())
		}
	}
	if d.Character != nil {
		v.Merge("character", d.Character.Validate())
	}
	if d.Started && (d.Character == nil || d.Genre == "") {
		v.Addf("gameStarted", "a started game needs a character and a genre")
	}
	if (d.Screen == ScreenGame || d.ReturnTo == ScreenGame) && !d.Started {
		v.Addf("screen", "game screen requires a started game")
	}
	if d.Mode == ModeCombat && d.Enemy == nil {
		v.Addf("enemy", "combat requires an enemy")
	}
	for i, it := range d.Inventory {
		v.Merge(fmt.Sprintf("inventory[%d]", i), it.Validate())
	}
	if d.Settings != (Settings{}) {
		var serr *validation.Error
		if errors.As(d.Settings.Validate(), &serr) {
			v.Merge("settings", serr)
		}
	}
	return v.Err()
}

// Snapshot returns a deep copy of the container state.
func (c *Container) Snapshot() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() Document {
	d := Document{
		Version:             DocumentVersion,
		SaveID:              c.saveID,
		PlayerID:            c.playerID,
		Screen:              c.screen,
		ReturnTo:            c.returnTo,
		Mode:                c.mode,
		Started:             c.started,
		Genre:               c.genre,
		Inventory:           c.inventory.Clone(),
		Events:              cloneEvents(c.events),
		CurrentStory:        c.currentStory,
		Choices:             slices.Clone(c.choices),
		Log:                 c.quests.Clone(),
		CurrentLocation:     c.location,
		DiscoveredLocations: slices.Clone(c.discovered),
		Settings:            c.settings,
	}
	if c.character != nil {
		ch := *c.character
		d.Character = &ch
	}
	if c.enemy != nil {
		e := *c.enemy
		d.Enemy = &e
	}
	return d
}

func cloneEvents(in []save.Event) []save.Event {
	out := make([]save.Event, len(in))
	for i, e := range in {
		e.Choices = slices.Clone(e.Choices)
		out[i] = e
	}
	return out
}

// Restore replaces the container state with d. Any outstanding request is
// discarded. A Document without settings keeps the current settings.
func (c *Container) Restore(d Document) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.saveID = d.SaveID
	if c.saveID == "" {
		c.saveID = uuid.NewString()
	}
	if d.PlayerID != "" {
		c.playerID = d.PlayerID
	}
	c.screen = d.Screen
	c.returnTo = d.ReturnTo
	c.mode = d.Mode
	c.started = d.Started
	c.genre = d.Genre
	c.character = nil
	if d.Character != nil {
		ch := *d.Character
		ch.ClampHealth()
		c.character = &ch
	}
	c.inventory = d.Inventory.Clone()
	c.events = cloneEvents(d.Events)
	c.currentStory = d.CurrentStory
	c.choices = slices.Clone(d.Choices)
	c.lastChoice = ""
	c.enemy = nil
	if d.Enemy != nil && d.Mode == ModeCombat {
		e := *d.Enemy
		c.enemy = &e
	}
	c.quests = d.Log.Clone()
	c.location = d.CurrentLocation
	if strings.TrimSpace(c.location) == "" {
		c.location = save.DefaultLocation
	}
	c.discovered = slices.Clone(d.DiscoveredLocations)
	if !slices.Contains(c.discovered, c.location) {
		c.discovered = append(c.discovered, c.location)
	}
	if d.Settings != (Settings{}) {
		c.settings = d.Settings
	}
	c.invalidateLocked()
	return nil
}

// AutoSaveSnapshot implements slots.Snapshotter: a snapshot is offered only
// while a game is started.
func (c *Container) AutoSaveSnapshot() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil, false
	}
	return c.snapshotLocked(), true
}

// SaveID returns the id used for remote saves.
func (c *Container) SaveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveID
}

// ToSession builds the remote save document for the running game.
func (c *Container) ToSession() (save.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.character == nil {
		return save.Session{}, fmt.Errorf("to session: %w", ErrNoCharacter)
	}
	if c.genre == "" {
		return save.Session{}, fmt.Errorf("to session: %w", ErrNoGenre)
	}
	d := c.snapshotLocked()
	return save.Session{
		SaveID:              d.SaveID,
		PlayerID:            d.PlayerID,
		Character:           *d.Character,
		Genre:               d.Genre,
		Events:              d.Events,
		Inventory:           d.Inventory,
		Log:                 d.Log,
		CurrentLocation:     d.CurrentLocation,
		DiscoveredLocations: d.DiscoveredLocations,
	}, nil
}

// FromSession resumes a remotely saved game on the game screen in Exploring
// mode. The last event supplies the current story and choices.
func (c *Container) FromSession(s save.Session) error {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	d := Document{
		Version:             DocumentVersion,
		SaveID:              s.SaveID,
		PlayerID:            s.PlayerID,
		Screen:              ScreenGame,
		Mode:                ModeExploring,
		Started:             true,
		Genre:               s.Genre,
		Character:           &s.Character,
		Inventory:           s.Inventory,
		Events:              s.Events,
		Log:                 s.Log,
		CurrentLocation:     s.CurrentLocation,
		DiscoveredLocations: s.DiscoveredLocations,
	}
	d.CurrentStory, d.Choices = OpeningStory, slices.Clone(OpeningChoices)
	for i := len(s.Events) - 1; i >= 0; i-- {
		if s.Events[i].Kind == save.EventStory || s.Events[i].Kind == "" {
			d.CurrentStory = s.Events[i].Text
			if len(s.Events[i].Choices) > 0 {
				d.Choices = slices.Clone(s.Events[i].Choices)
			}
			break
		}
	}
	return c.Restore(d)
}
