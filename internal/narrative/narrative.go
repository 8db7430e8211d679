// Package narrative turns the player's last choice into the next story
// segment by prompting an external language-model provider.
package narrative

import (
	"errors"
	"strings"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// BeginChoice replaces an empty choice on the opening turn.
const BeginChoice = "begin the adventure"

// FallbackStory is used when a payload carries no story text.
const FallbackStory = "The adventure continues..."

const (
	maxNameLength   = 50
	maxClassLength  = 30
	maxChoiceLength = 500
	choiceCount     = 3
)

// GenericChoices pad or replace a payload's choices.
var GenericChoices = []string{"Continue forward", "Look around", "Rest"}

// ErrProvider wraps every failure of the external provider, including an
// unparseable payload. Generate returns it together with a usable fallback.
var ErrProvider = errors.New("narrative provider failed")

// Request is one narrative turn.
type Request struct {
	Player         character.Character `json:"player"`
	Genre          string              `json:"genre"`
	PreviousEvents []save.Event        `json:"previousEvents"`
	Choice         string              `json:"choice,omitempty"`
}

// Normalize trims the choice and genre and substitutes BeginChoice for an
// empty choice.
func (r *Request) Normalize() {
	r.Genre = strings.ToLower(strings.TrimSpace(r.Genre))
	r.Choice = strings.TrimSpace(r.Choice)
	if r.Choice == "" {
		r.Choice = BeginChoice
	}
}

// Validate reports every rejected field.
//
// Postcondition: returns nil or a *validation.Error.
func (r Request) Validate() error {
	v := &validation.Error{}
	v.Length("player.name", r.Player.Name, 1, maxNameLength)
	v.Length("player.class", string(r.Player.Class), 1, maxClassLength)
	v.OneOf("genre", r.Genre, save.GenreNames())
	v.Length("choice", r.Choice, 0, maxChoiceLength)
	return v.Err()
}

// context joins the texts of the previous events, one per line.
func (r Request) context() string {
	texts := make([]string, 0, len(r.PreviousEvents))
	for _, e := range r.PreviousEvents {
		if t := strings.TrimSpace(e.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n")
}

// Response is the next story segment.
//
// Invariant: Story is non-empty and Choices has exactly three entries.
type Response struct {
	Story   string           `json:"story"`
	Choices []string         `json:"choices"`
	Enemy   *combat.Enemy    `json:"enemy,omitempty"`
	Items   []inventory.Item `json:"items,omitempty"`
}
