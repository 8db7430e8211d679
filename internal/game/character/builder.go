package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownClass is returned by New when class is not one of Classes.
var ErrUnknownClass = errors.New("unknown class")

// classBoosts are added to the default stat block at creation.
var classBoosts = map[Class]Stats{
	ClassWarrior: {Strength: 4, Constitution: 2, Intelligence: -2},
	ClassMage:    {Intelligence: 4, Wisdom: 2, Strength: -2},
	ClassRogue:   {Dexterity: 4, Charisma: 2, Constitution: -2},
}

// New constructs a level 1 character with class starting stats: all
// attributes start at 10 and the class boost is applied on top. Warriors
// lean on strength, mages on intelligence, rogues on dexterity.
//
// Precondition: name must be non-empty after trimming.
// Postcondition: Returns a Character that passes Validate, or a non-nil error.
func New(name string, class Class, gender Gender) (*Character, error) {
	c := &Character{
		Name:      name,
		Class:     class,
		Gender:    gender,
		Level:     1,
		Health:    defaultHealth,
		MaxHealth: defaultHealth,
	}
	c.Normalize()

	boost, ok := classBoosts[c.Class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, strings.TrimSpace(string(class)))
	}
	c.Stats = addStats(DefaultStats(), boost)

	if verr := c.Validate(); verr != nil {
		return nil, verr
	}
	return c, nil
}

func addStats(a, b Stats) Stats {
	return Stats{
		Strength:     a.Strength + b.Strength,
		Intelligence: a.Intelligence + b.Intelligence,
		Wisdom:       a.Wisdom + b.Wisdom,
		Dexterity:    a.Dexterity + b.Dexterity,
		Constitution: a.Constitution + b.Constitution,
		Charisma:     a.Charisma + b.Charisma,
	}
}
