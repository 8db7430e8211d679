package narrative

import (
	"strings"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

type fallbackScene struct {
	verb    string
	story   string
	choices []string
	enemy   *combat.Enemy
	items   []inventory.Item
}

var fallbackScenes = [...]fallbackScene{
	{
		verb:    "explore left",
		story:   "The corridor narrows and the torches dim. Something moves in the gloom. A snarling goblinoid lunges from the shadows and combat is joined.",
		choices: []string{"Attack the creature", "Try to talk to it", "Attempt to flee"},
		enemy:   &combat.Enemy{ID: "enemy_goblin_scout", Name: "Goblin Scout", Health: 28, MaxHealth: 28, Attack: 7, Defense: 3},
	},
	{
		verb:    "investigate the center",
		story:   "The air smells of old incense. A small chest sits half-buried beneath rubble; inside you find a glittering potion and a weathered note.",
		choices: []string{"Drink the potion", "Read the note", "Leave it be"},
		items: []inventory.Item{{
			ID: "minor_health_potion", Name: "Minor Health Potion", Category: inventory.CategoryPotion,
			Effect: "Restores 30 health", Quantity: 1,
		}},
	},
	{
		verb:    "take the right path",
		story:   "The corridor opens into a quiet chamber with murals telling an ancient tale. You feel the weight of destiny. Could this be a turning point?",
		choices: []string{"Study the murals", "Set up camp and rest", "Search for secret doors"},
	},
}

// LocalFallback returns a canned continuation for req without contacting a
// provider. A choice mentioning "left" always meets the Goblin Scout and one
// mentioning "center" always finds the potion; any other choice picks a
// scene from a checksum of the choice and the previous events.
//
// Postcondition: the result is a pure function of req and satisfies the Response invariant.
func LocalFallback(req Request) Response {
	choice := strings.TrimSpace(req.Choice)
	lower := strings.ToLower(choice)

	var idx int
	switch {
	case strings.Contains(lower, "left"):
		idx = 0
	case strings.Contains(lower, "center"):
		idx = 1
	default:
		idx = checksum(choice+req.context()) % len(fallbackScenes)
	}
	scene := fallbackScenes[idx]

	verb := lower
	if verb == "" || verb == BeginChoice {
		verb = scene.verb
	}
	resp := Response{
		Story:   "You chose to " + verb + ". " + scene.story,
		Choices: append([]string(nil), scene.choices...),
	}
	if scene.enemy != nil {
		e := *scene.enemy
		resp.Enemy = &e
	}
	if scene.items != nil {
		resp.Items = append([]inventory.Item(nil), scene.items...)
	}
	return resp
}

func checksum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += int(s[i])
	}
	return sum
}
