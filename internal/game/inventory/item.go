// Package inventory models the items a character carries and the rules for
// acquiring, using and removing them.
package inventory

import (
	"strings"

	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// Category classifies an item.
type Category string

// Category constants for Item.Category.
const (
	CategoryWeapon Category = "weapon"
	CategoryArmor  Category = "armor"
	CategoryPotion Category = "potion"
	CategoryKey    Category = "key"
	CategoryQuest  Category = "quest"
)

// validCategories is the set of accepted item categories.
var validCategories = map[Category]bool{
	CategoryWeapon: true,
	CategoryArmor:  true,
	CategoryPotion: true,
	CategoryKey:    true,
	CategoryQuest:  true,
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool { return validCategories[c] }

// CoerceCategory lowercases raw and maps any unknown value to CategoryQuest.
func CoerceCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !validCategories[c] {
		return CategoryQuest
	}
	return c
}

// Item is one inventory entry. Quantity counts identical units sharing ID.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"type"`
	Effect   string   `json:"effect,omitempty"`
	Quantity int      `json:"quantity"`
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (it Item) Validate() *validation.Error {
	v := &validation.Error{}
	v.Length("id", it.ID, 1, 100)
	v.Length("name", it.Name, 1, 100)
	if !ValidCategory(it.Category) {
		v.Addf("type", "unknown category %q", it.Category)
	}
	if it.Quantity < 1 {
		v.Addf("quantity", "must be at least 1, got %d", it.Quantity)
	}
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}
