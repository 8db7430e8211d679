// Package session holds the client-side play session: a mutex-guarded
// Container mutated by player actions, merged with narrative and combat
// responses and snapshotted for local and remote saves.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/quest"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
	"github.com/cory-johannsen/dungeon/internal/narrative"
)

var (
	ErrNoCharacter    = errors.New("no character created")
	ErrNoGenre        = errors.New("no genre selected")
	ErrNoEnemy        = errors.New("no enemy present")
	ErrWrongMode      = errors.New("not allowed in the current play mode")
	ErrWrongScreen    = errors.New("not allowed on the current screen")
	ErrRequestPending = errors.New("a request is already pending")
	ErrStaleResponse  = errors.New("stale response discarded")
)

// MaxContextEvents caps the previous events sent with a narrative turn.
const MaxContextEvents = 20

// OpeningStory is shown when a new game starts.
const OpeningStory = "You stand at the entrance of an ancient dungeon. The air is thick with mystery, " +
	"and the flickering torchlight casts dancing shadows on the stone walls. " +
	"The path ahead splits into three directions..."

// OpeningChoices accompany OpeningStory.
var OpeningChoices = []string{"Explore the left corridor", "Investigate the center passage", "Take the right pathway"}

type ticketKind int

const (
	kindNarrative ticketKind = iota + 1
	kindCombat
)

// Ticket identifies one outstanding request. A response is accepted only
// with the ticket of the latest request and only while the generation it
// was issued under is current.
type Ticket struct {
	generation uint64
	kind       ticketKind
}

// Generation returns the generation the ticket was issued under.
func (t Ticket) Generation() uint64 { return t.generation }

// Container is the in-memory play session. All methods are safe for
// concurrent use.
type Container struct {
	mu      sync.Mutex
	now     func() time.Time
	effects inventory.EffectApplier

	saveID   string
	playerID string

	screen   Screen
	returnTo Screen
	mode     Mode
	started  bool

	genre     save.Genre
	character *character.Character
	inventory inventory.Inventory
	events    []save.Event

	currentStory string
	choices      []string
	lastChoice   string
	enemy        *combat.Enemy

	quests     quest.Log
	location   string
	discovered []string
	settings   Settings

	generation uint64
	pending    *Ticket
}

// NewContainer returns a Container on the intro screen for playerID.
//
// Postcondition: the container has a fresh save id and default settings.
func NewContainer(playerID string) *Container {
	c := &Container{
		now:      time.Now,
		effects:  inventory.DefaultEffects{},
		playerID: strings.TrimSpace(playerID),
		settings: DefaultSettings(),
	}
	c.resetLocked()
	return c
}

// WithClock replaces the time source. Used by tests.
func (c *Container) WithClock(now func() time.Time) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// WithEffects replaces the item effect applier used by UseItem.
func (c *Container) WithEffects(e inventory.EffectApplier) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.effects = e
	return c
}

func (c *Container) resetLocked() {
	c.saveID = uuid.NewString()
	c.screen = ScreenIntro
	c.returnTo = ""
	c.mode = ModeExploring
	c.started = false
	c.genre = ""
	c.character = nil
	c.inventory = inventory.Inventory{}
	c.events = []save.Event{}
	c.currentStory = ""
	c.choices = nil
	c.lastChoice = ""
	c.enemy = nil
	c.quests = quest.Log{Active: []quest.Quest{}, Completed: []string{}}
	c.location = save.DefaultLocation
	c.discovered = []string{save.DefaultLocation}
	c.invalidateLocked()
}

// invalidateLocked discards any outstanding request.
func (c *Container) invalidateLocked() {
	c.generation++
	c.pending = nil
}

// Reset abandons the current game. Settings and the player id survive; a
// new save id is issued.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Screen returns the current screen.
func (c *Container) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Mode returns the current play mode.
func (c *Container) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Started reports whether a game is in progress.
func (c *Container) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Generation returns the current request generation.
func (c *Container) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Character returns a copy of the character and whether one exists.
func (c *Container) Character() (character.Character, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.character == nil {
		return character.Character{}, false
	}
	return *c.character, true
}

// Enemy returns a copy of the current enemy and whether one is present.
func (c *Container) Enemy() (combat.Enemy, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enemy == nil {
		return combat.Enemy{}, false
	}
	return *c.enemy, true
}

// Story returns the current story text and offered choices.
func (c *Container) Story() (string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStory, slices.Clone(c.choices)
}

// Inventory returns a copy of the inventory.
func (c *Container) Inventory() inventory.Inventory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inventory.Clone()
}

// Navigate moves to screen to.
//
// Entering the game screen requires a character and a genre and starts the
// game on first entry. Leaving the game screen discards any outstanding
// request.
func (c *Container) Navigate(to Screen) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.screen
	if from == to {
		return nil
	}
	if !ValidScreen(to) || !allowed(from, to, c.returnTo) {
		return &TransitionError{From: from, To: to}
	}
	if to == ScreenGame {
		if c.character == nil {
			return fmt.Errorf("enter game: %w", ErrNoCharacter)
		}
		if c.genre == "" {
			return fmt.Errorf("enter game: %w", ErrNoGenre)
		}
		if !c.started {
			c.startGameLocked()
		}
	}
	switch {
	case to == ScreenSettings:
		c.returnTo = from
	case from == ScreenSettings:
		c.returnTo = ""
	}
	if from == ScreenGame {
		c.invalidateLocked()
	}
	c.screen = to
	return nil
}

func (c *Container) startGameLocked() {
	c.started = true
	c.mode = ModeExploring
	c.currentStory = OpeningStory
	c.choices = slices.Clone(OpeningChoices)
	c.appendEventLocked(save.EventStory, OpeningStory, c.choices, "")
}

func (c *Container) appendEventLocked(kind save.EventKind, text string, choices []string, choice string) {
	c.events = append(c.events, save.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		Choices:   slices.Clone(choices),
		Choice:    choice,
		Timestamp: c.now().UTC(),
	})
}

// CreateCharacter creates the player's character on the character screen.
// Any previous character and its inventory are replaced.
func (c *Container) CreateCharacter(name string, class character.Class, gender character.Gender) (character.Character, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != ScreenCharacter {
		return character.Character{}, fmt.Errorf("create character on %q: %w", c.screen, ErrWrongScreen)
	}
	ch, err := character.New(name, class, gender)
	if err != nil {
		return character.Character{}, err
	}
	c.character = ch
	c.inventory = inventory.Inventory{}
	return *ch, nil
}

// SelectGenre chooses the narrative genre on the genre screen.
func (c *Container) SelectGenre(genre string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != ScreenGenre {
		return fmt.Errorf("select genre on %q: %w", c.screen, ErrWrongScreen)
	}
	g, ok := save.ParseGenre(genre)
	if !ok {
		v := &validation.Error{}
		v.OneOf("genre", genre, save.GenreNames())
		return v
	}
	c.genre = g
	return nil
}

// requirePlayingLocked checks that a game is running on the game screen in mode m.
func (c *Container) requirePlayingLocked(op string, m Mode) error {
	if !c.started || c.screen != ScreenGame {
		return fmt.Errorf("%s on %q: %w", op, c.screen, ErrWrongScreen)
	}
	if c.character == nil {
		return fmt.Errorf("%s: %w", op, ErrNoCharacter)
	}
	if c.mode != m {
		return fmt.Errorf("%s while %s: %w", op, c.mode, ErrWrongMode)
	}
	if c.pending != nil {
		return fmt.Errorf("%s: %w", op, ErrRequestPending)
	}
	return nil
}

func (c *Container) issueLocked(kind ticketKind) Ticket {
	t := Ticket{generation: c.generation, kind: kind}
	c.pending = &t
	return t
}

// redeemLocked accepts a response carrying t and clears the pending request.
func (c *Container) redeemLocked(t Ticket, kind ticketKind) error {
	if c.pending == nil || *c.pending != t || t.kind != kind || t.generation != c.generation {
		return ErrStaleResponse
	}
	c.pending = nil
	return nil
}

// Abandon releases the outstanding request identified by t without
// applying a response. A stale t is ignored.
func (c *Container) Abandon(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && *c.pending == t {
		c.pending = nil
	}
}

// BeginTurn starts a narrative turn with the player's choice and returns the
// request to send along with its ticket.
//
// Precondition: a game is running, the mode is Exploring and no request is pending.
func (c *Container) BeginTurn(choice string) (Ticket, narrative.Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePlayingLocked("narrative turn", ModeExploring); err != nil {
		return Ticket{}, narrative.Request{}, err
	}
	choice = strings.TrimSpace(choice)
	events := c.events
	if len(events) > MaxContextEvents {
		events = events[len(events)-MaxContextEvents:]
	}
	req := narrative.Request{
		Player:         *c.character,
		Genre:          string(c.genre),
		PreviousEvents: slices.Clone(events),
		Choice:         choice,
	}
	c.lastChoice = choice
	return c.issueLocked(kindNarrative), req, nil
}

// ApplyNarrative merges a story continuation: the story becomes the current
// story and a new event, choices are replaced, items are acquired and an
// enemy starts combat.
func (c *Container) ApplyNarrative(t Ticket, resp narrative.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.redeemLocked(t, kindNarrative); err != nil {
		return err
	}
	c.currentStory = resp.Story
	c.choices = slices.Clone(resp.Choices)
	c.appendEventLocked(save.EventStory, resp.Story, resp.Choices, c.lastChoice)
	c.lastChoice = ""

	var errs []error
	for _, it := range resp.Items {
		if err := c.inventory.Add(it); err != nil {
			errs = append(errs, fmt.Errorf("acquire %q: %w", it.ID, err))
			continue
		}
		c.appendEventLocked(save.EventItem, fmt.Sprintf("You found %s.", it.Name), nil, "")
	}
	if resp.Enemy != nil {
		if err := c.startCombatLocked(*resp.Enemy); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
