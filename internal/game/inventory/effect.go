package inventory

import "github.com/cory-johannsen/dungeon/internal/game/character"

// PotionHeal is the health a potion restores when no script overrides it.
const PotionHeal = 30

// Outcome describes what using an item did to the user.
type Outcome struct {
	Heal    int    // health to restore, before clamping to maxHealth
	Message string // combat log line
}

// EffectApplier computes the outcome of using item on c. Implementations
// must not mutate c.
type EffectApplier interface {
	Apply(item Item, c character.Character) (Outcome, error)
}

// DefaultEffects is the built-in EffectApplier: potions heal PotionHeal,
// everything else has no mechanical effect.
type DefaultEffects struct{}

// Apply implements EffectApplier.
func (DefaultEffects) Apply(item Item, _ character.Character) (Outcome, error) {
	if item.Category == CategoryPotion {
		return Outcome{Heal: PotionHeal, Message: "You drink the " + item.Name + "."}, nil
	}
	return Outcome{Message: "You use the " + item.Name + ", but nothing happens."}, nil
}
