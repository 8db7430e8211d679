// Package character defines the player character domain model and pure creation logic.
package character

import (
	"encoding/json"
	"strings"

	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// Class is a player archetype. Values are stored lowercase.
type Class string

const (
	ClassWarrior Class = "warrior"
	ClassMage    Class = "mage"
	ClassRogue   Class = "rogue"
)

// Classes lists every playable class.
var Classes = []Class{ClassWarrior, ClassMage, ClassRogue}

// Gender is the character's declared gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists every accepted gender.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

const (
	// MaxLevel is the level cap.
	MaxLevel = 100
	// MaxNameLength is the longest accepted character name in runes.
	MaxNameLength = 50

	defaultHealth = 100
	defaultStat   = 10
	levelUpHealth = 10
)

// Stats holds the six attribute values for a character.
type Stats struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Charisma     int `json:"charisma"`
}

// DefaultStats returns a stat block with every attribute at 10.
func DefaultStats() Stats {
	return Stats{
		Strength: defaultStat, Intelligence: defaultStat, Wisdom: defaultStat,
		Dexterity: defaultStat, Constitution: defaultStat, Charisma: defaultStat,
	}
}

// UnmarshalJSON fills attributes missing from data with their defaults.
func (s *Stats) UnmarshalJSON(data []byte) error {
	type plain Stats
	p := plain(DefaultStats())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Stats(p)
	return nil
}

// Character represents a player character's persistent state.
type Character struct {
	Name       string `json:"name"`
	Class      Class  `json:"class"`
	Gender     Gender `json:"gender"`
	Level      int    `json:"level"`
	Health     int    `json:"health"`
	MaxHealth  int    `json:"maxHealth"`
	Experience int    `json:"experience"`
	Gold       int    `json:"gold"`
	Stats      Stats  `json:"stats"`
}

// UnmarshalJSON applies defaults for every field absent from data and
// lowercases class and gender.
func (c *Character) UnmarshalJSON(data []byte) error {
	type plain Character
	p := plain{
		Level:     1,
		Health:    defaultHealth,
		MaxHealth: defaultHealth,
		Stats:     DefaultStats(),
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Character(p)
	c.Normalize()
	return nil
}

// Normalize trims the name and lowercases class and gender.
func (c *Character) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Class = Class(strings.ToLower(strings.TrimSpace(string(c.Class))))
	c.Gender = Gender(strings.ToLower(strings.TrimSpace(string(c.Gender))))
}

// Validate reports every rule the character breaks. Class and gender are
// compared case-insensitively.
func (c Character) Validate() *validation.Error {
	v := &validation.Error{}
	v.Length("name", c.Name, 1, MaxNameLength)
	v.OneOf("class", strings.ToLower(strings.TrimSpace(string(c.Class))), classNames())
	v.OneOf("gender", strings.ToLower(strings.TrimSpace(string(c.Gender))), genderNames())
	v.Range("level", c.Level, 1, MaxLevel)
	v.NonNegative("health", c.Health)
	v.NonNegative("maxHealth", c.MaxHealth)
	v.NonNegative("experience", c.Experience)
	v.NonNegative("gold", c.Gold)
	if c.Health > c.MaxHealth && c.MaxHealth >= 0 {
		v.Addf("health", "must not exceed maxHealth %d, got %d", c.MaxHealth, c.Health)
	}
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

// ClampHealth forces Health into [0, MaxHealth].
func (c *Character) ClampHealth() {
	if c.MaxHealth < 0 {
		c.MaxHealth = 0
	}
	c.Health = clamp(c.Health, 0, c.MaxHealth)
}

// TakeDamage lowers Health by n, flooring at 0, and returns the damage dealt.
//
// Precondition: n >= 0.
func (c *Character) TakeDamage(n int) int {
	before := c.Health
	c.Health = clamp(c.Health-n, 0, c.MaxHealth)
	return before - c.Health
}

// Heal raises Health by n, capped at MaxHealth, and returns the amount restored.
//
// Precondition: n >= 0.
func (c *Character) Heal(n int) int {
	before := c.Health
	c.Health = clamp(c.Health+n, 0, c.MaxHealth)
	return c.Health - before
}

// Alive reports whether the character has positive health.
func (c Character) Alive() bool { return c.Health > 0 }

// ExperienceToNext returns the experience required to leave level.
func ExperienceToNext(level int) int { return level * 100 }

// GainExperience adds xp and applies every level-up it earns. Each level-up
// consumes the threshold, raises MaxHealth by 10 and restores Health fully.
// Level never exceeds MaxLevel.
//
// Precondition: xp >= 0.
// Postcondition: returns the number of levels gained.
func (c *Character) GainExperience(xp int) int {
	c.Experience += xp
	gained := 0
	for c.Level < MaxLevel && c.Experience >= ExperienceToNext(c.Level) {
		c.Experience -= ExperienceToNext(c.Level)
		c.Level++
		c.MaxHealth += levelUpHealth
		c.Health = c.MaxHealth
		gained++
	}
	return gained
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func classNames() []string {
	out := make([]string, len(Classes))
	for i, c := range Classes {
		out[i] = string(c)
	}
	return out
}

func genderNames() []string {
	out := make([]string, len(Genders))
	for i, g := range Genders {
		out[i] = string(g)
	}
	return out
}
