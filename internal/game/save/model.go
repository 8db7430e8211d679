// Package save defines the persisted play session, its validation rules and
// the Service that stores sessions and player profiles.
package save

import (
	"slices"
	"strings"
	"time"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/quest"
)

// Genre selects the narrative persona.
type Genre string

const (
	GenreFantasy   Genre = "fantasy"
	GenreSciFi     Genre = "sci-fi"
	GenreMystery   Genre = "mystery"
	GenreHorror    Genre = "horror"
	GenreWestern   Genre = "western"
	GenreCyberpunk Genre = "cyberpunk"
)

// Genres lists every supported genre.
var Genres = []Genre{GenreFantasy, GenreSciFi, GenreMystery, GenreHorror, GenreWestern, GenreCyberpunk}

// ParseGenre lowercases s and reports whether it names a supported genre.
func ParseGenre(s string) (Genre, bool) {
	g := Genre(strings.ToLower(strings.TrimSpace(s)))
	return g, slices.Contains(Genres, g)
}

// GenreNames returns Genres as strings.
func GenreNames() []string {
	out := make([]string, len(Genres))
	for i, g := range Genres {
		out[i] = string(g)
	}
	return out
}

// State is the lifecycle of a stored session.
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// DefaultLocation is where every new session starts.
const DefaultLocation = "starting_village"

// EventKind classifies a story log entry.
type EventKind string

const (
	EventStory   EventKind = "story"
	EventCombat  EventKind = "combat"
	EventItem    EventKind = "item"
	EventLevelUp EventKind = "level-up"
)

// Event is one entry of the append-only story log.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"type,omitempty"`
	Text      string    `json:"text"`
	Choices   []string  `json:"choices,omitempty"`
	Choice    string    `json:"choice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the persisted state of one play-through, keyed by SaveID.
type Session struct {
	SaveID    string              `json:"saveId"`
	PlayerID  string              `json:"playerId"`
	Character character.Character `json:"character"`
	Genre     Genre               `json:"genre"`
	Events    []Event             `json:"events"`
	Inventory inventory.Inventory `json:"inventory"`
	quest.Log
	CurrentLocation     string    `json:"currentLocation"`
	DiscoveredLocations []string  `json:"discoveredLocations"`
	State               State     `json:"state"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// IsActive reports whether the session is visible to Load and ListRecent.
func (s *Session) IsActive() bool { return s.State != StateDeleted }

// Normalize trims identifiers, lowercases the genre, applies the default
// location and drops duplicate discovered locations keeping first occurrence.
func (s *Session) Normalize() {
	s.SaveID = strings.TrimSpace(s.SaveID)
	s.PlayerID = strings.TrimSpace(s.PlayerID)
	s.Genre = Genre(strings.ToLower(strings.TrimSpace(string(s.Genre))))
	s.Character.Normalize()
	if strings.TrimSpace(s.CurrentLocation) == "" {
		s.CurrentLocation = DefaultLocation
	}
	s.DiscoveredLocations = dedupe(s.DiscoveredLocations)
	if s.Events == nil {
		s.Events = []Event{}
	}
	if s.Inventory == nil {
		s.Inventory = inventory.Inventory{}
	}
	if s.Log.Active == nil {
		s.Log.Active = []quest.Quest{}
	}
	if s.Log.Completed == nil {
		s.Log.Completed = []string{}
	}
}

// Summary is the projection returned by ListRecent.
type Summary struct {
	SaveID        string    `json:"saveId"`
	CharacterName string    `json:"characterName"`
	Level         int       `json:"level"`
	Genre         Genre     `json:"genre"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summarize projects s to a Summary.
func (s *Session) Summarize() Summary {
	return Summary{
		SaveID:        s.SaveID,
		CharacterName: s.Character.Name,
		Level:         s.Character.Level,
		Genre:         s.Genre,
		UpdatedAt:     s.UpdatedAt,
	}
}

// Profile is the per-player record touched on every save.
type Profile struct {
	PlayerID     string    `json:"playerId"`
	DisplayName  string    `json:"displayName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastPlayed   time.Time `json:"lastPlayed"`
	PlayCount    int       `json:"playCount"`
	Achievements []string  `json:"achievements"`
}

// AddAchievement records a with set semantics and reports whether it was new.
func (p *Profile) AddAchievement(a string) bool {
	if slices.Contains(p.Achievements, a) {
		return false
	}
	p.Achievements = append(p.Achievements, a)
	return true
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
