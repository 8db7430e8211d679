// Package combat resolves one turn of a duel between the player and an enemy.
package combat

import (
	"strings"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

// DefaultEnemyAttack is used when an enemy declares no attack value.
const DefaultEnemyAttack = 5

// Action is the player's declared move for a turn.
type Action string

const (
	ActionAttack  Action = "attack"
	ActionDefend  Action = "defend"
	ActionUseItem Action = "use-item"
	ActionRun     Action = "run"
)

// Actions lists every valid Action.
var Actions = []Action{ActionAttack, ActionDefend, ActionUseItem, ActionRun}

// ParseAction lowercases s and reports whether it names a valid Action.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Actions {
		if a == v {
			return a, true
		}
	}
	return a, false
}

// Enemy is the opponent in a duel.
type Enemy struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"maxHealth"`
	Attack    int    `json:"attack"`
	Defense   int    `json:"defense"`
}

// EffectiveAttack returns Attack, or DefaultEnemyAttack when Attack is not positive.
func (e Enemy) EffectiveAttack() int {
	if e.Attack <= 0 {
		return DefaultEnemyAttack
	}
	return e.Attack
}

// EffectiveMaxHealth returns MaxHealth, or Health when MaxHealth is unset.
func (e Enemy) EffectiveMaxHealth() int {
	if e.MaxHealth <= 0 {
		return e.Health
	}
	return e.MaxHealth
}

// Request is one declared combat turn.
type Request struct {
	Player    character.Character `json:"player"`
	Enemy     Enemy               `json:"enemy"`
	Action    Action              `json:"action"`
	ItemID    string              `json:"itemId,omitempty"`
	Inventory inventory.Inventory `json:"inventory,omitempty"`
}

// Rewards is granted on victory.
type Rewards struct {
	XP    int              `json:"xp"`
	Gold  int              `json:"gold"`
	Items []inventory.Item `json:"items"`
}

// Result is the outcome of one turn. PlayerDamage is the damage the player
// took and EnemyDamage the damage the enemy took.
type Result struct {
	PlayerDamage int                 `json:"playerDamage"`
	EnemyDamage  int                 `json:"enemyDamage"`
	PlayerHealth int                 `json:"playerHealth"`
	EnemyHealth  int                 `json:"enemyHealth"`
	CombatLog    []string            `json:"combatLog"`
	Victory      bool                `json:"victory,omitempty"`
	Defeat       bool                `json:"defeat,omitempty"`
	Escaped      bool                `json:"escaped,omitempty"`
	Rewards      *Rewards            `json:"rewards,omitempty"`
	Inventory    inventory.Inventory `json:"inventory,omitempty"`
}
