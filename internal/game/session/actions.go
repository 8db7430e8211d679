package session

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/quest"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

const maxLocationLength = 100

// StartCombat begins a fight with enemy.
//
// Precondition: a character exists and the mode is Exploring.
func (c *Container) StartCombat(enemy combat.Enemy) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startCombatLocked(enemy)
}

func (c *Container) startCombatLocked(enemy combat.Enemy) error {
	if c.character == nil {
		return fmt.Errorf("start combat: %w", ErrNoCharacter)
	}
	if c.mode != ModeExploring {
		return fmt.Errorf("start combat while %s: %w", c.mode, ErrWrongMode)
	}
	v := &validation.Error{}
	v.Length("enemy.name", enemy.Name, 1, 100)
	if enemy.Health <= 0 {
		v.Addf("enemy.health", "must be positive, got %d", enemy.Health)
	}
	if err := v.Err(); err != nil {
		return err
	}
	enemy.MaxHealth = max(enemy.EffectiveMaxHealth(), enemy.Health)
	c.enemy = &enemy
	c.mode = ModeCombat
	c.appendEventLocked(save.EventCombat, enemy.Name+" blocks your path!", nil, "")
	return nil
}

// BeginCombatTurn declares action for the next combat round and returns the
// request to resolve along with its ticket.
//
// Precondition: the mode is Combat and no request is pending.
func (c *Container) BeginCombatTurn(action combat.Action, itemID string) (Ticket, combat.Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePlayingLocked("combat turn", ModeCombat); err != nil {
		return Ticket{}, combat.Request{}, err
	}
	if c.enemy == nil {
		return Ticket{}, combat.Request{}, fmt.Errorf("combat turn: %w", ErrNoEnemy)
	}
	req := combat.Request{
		Player:    *c.character,
		Enemy:     *c.enemy,
		Action:    action,
		ItemID:    strings.TrimSpace(itemID),
		Inventory: c.inventory.Clone(),
	}
	return c.issueLocked(kindCombat), req, nil
}

// ApplyCombat merges a resolved round: health is synchronized, an item-use
// inventory replaces the current one, victory grants rewards, defeat moves
// to Defeated and an escape returns to Exploring.
func (c *Container) ApplyCombat(t Ticket, res combat.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.redeemLocked(t, kindCombat); err != nil {
		return err
	}
	if c.character == nil {
		return fmt.Errorf("apply combat: %w", ErrNoCharacter)
	}

	ch := c.character
	ch.Health = res.PlayerHealth
	ch.ClampHealth()
	if c.enemy != nil {
		c.enemy.Health = max(0, min(res.EnemyHealth, c.enemy.MaxHealth))
	}
	if res.Inventory != nil {
		c.inventory = res.Inventory.Clone()
	}
	if len(res.CombatLog) > 0 {
		c.appendEventLocked(save.EventCombat, strings.Join(res.CombatLog, "\n"), nil, "")
	}

	switch {
	case res.Escaped:
		c.endCombatLocked()
	case res.Victory:
		if res.Rewards != nil {
			c.grantLocked(res.Rewards.XP, res.Rewards.Gold)
			for _, it := range res.Rewards.Items {
				if err := c.inventory.Add(it); err == nil {
					c.appendEventLocked(save.EventItem, fmt.Sprintf("You found %s.", it.Name), nil, "")
				}
			}
		}
		c.endCombatLocked()
	case res.Defeat || !ch.Alive():
		c.mode = ModeDefeated
	}
	return nil
}

// grantLocked adds experience and gold and logs any level-up.
func (c *Container) grantLocked(xp, gold int) {
	ch := c.character
	ch.Gold += max(0, gold)
	if levels := ch.GainExperience(max(0, xp)); levels > 0 {
		c.appendEventLocked(save.EventLevelUp, fmt.Sprintf("You reached level %d!", ch.Level), nil, "")
	}
}

func (c *Container) endCombatLocked() {
	c.enemy = nil
	c.mode = ModeExploring
}

// EndCombat leaves combat without resolving a round. Any pending combat
// request is discarded.
func (c *Container) EndCombat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeCombat {
		return fmt.Errorf("end combat while %s: %w", c.mode, ErrWrongMode)
	}
	c.endCombatLocked()
	c.invalidateLocked()
	return nil
}

func nonNegative(field string, n int) error {
	v := &validation.Error{}
	v.NonNegative(field, n)
	return v.Err()
}

// DamagePlayer lowers the character's health by n and returns the damage
// dealt. Reaching zero health moves to Defeated.
func (c *Container) DamagePlayer(n int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := nonNegative("damage", n); err != nil {
		return 0, err
	}
	if c.character == nil {
		return 0, fmt.Errorf("damage player: %w", ErrNoCharacter)
	}
	if c.mode == ModeDefeated {
		return 0, fmt.Errorf("damage player while %s: %w", c.mode, ErrWrongMode)
	}
	dealt := c.character.TakeDamage(n)
	if !c.character.Alive() {
		c.mode = ModeDefeated
		c.invalidateLocked()
	}
	return dealt, nil
}

// DamageEnemy lowers the enemy's health by n, flooring at zero, and returns
// the damage dealt.
func (c *Container) DamageEnemy(n int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := nonNegative("damage", n); err != nil {
		return 0, err
	}
	if c.enemy == nil {
		return 0, fmt.Errorf("damage enemy: %w", ErrNoEnemy)
	}
	before := c.enemy.Health
	c.enemy.Health = max(0, before-n)
	return before - c.enemy.Health, nil
}

// HealPlayer restores up to n health and returns the amount restored.
func (c *Container) HealPlayer(n int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := nonNegative("heal", n); err != nil {
		return 0, err
	}
	if c.character == nil {
		return 0, fmt.Errorf("heal player: %w", ErrNoCharacter)
	}
	if c.mode == ModeDefeated {
		return 0, fmt.Errorf("heal player while %s: %w", c.mode, ErrWrongMode)
	}
	return c.character.Heal(n), nil
}

// AcquireItem adds item to the inventory, merging quantities by id.
func (c *Container) AcquireItem(item inventory.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.character == nil {
		return fmt.Errorf("acquire item: %w", ErrNoCharacter)
	}
	if err := c.inventory.Add(item); err != nil {
		return err
	}
	c.appendEventLocked(save.EventItem, fmt.Sprintf("You found %s.", item.Name), nil, "")
	return nil
}

// UseItem applies one unit of item id to the character outside combat. In
// combat items are used through the use-item action.
func (c *Container) UseItem(id string) (inventory.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.character == nil {
		return inventory.Outcome{}, fmt.Errorf("use item: %w", ErrNoCharacter)
	}
	if c.mode != ModeExploring {
		return inventory.Outcome{}, fmt.Errorf("use item while %s: %w", c.mode, ErrWrongMode)
	}
	item, ok := c.inventory.Find(id)
	if !ok {
		return inventory.Outcome{}, fmt.Errorf("use %q: %w", id, inventory.ErrItemNotFound)
	}
	out, err := c.effects.Apply(item, *c.character)
	if err != nil {
		return inventory.Outcome{}, fmt.Errorf("use %q: %w", id, err)
	}
	if _, err := c.inventory.Consume(id, 1); err != nil {
		return inventory.Outcome{}, err
	}
	out.Heal = c.character.Heal(max(0, out.Heal))
	c.appendEventLocked(save.EventItem, out.Message, nil, "")
	return out, nil
}

// AcceptQuest adds q to the active quests.
func (c *Container) AcceptQuest(q quest.Quest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quests.Accept(q)
}

// AdvanceQuest adds delta to the progress of quest id.
func (c *Container) AdvanceQuest(id string, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quests.Advance(id, delta)
}

// CompleteQuest moves quest id to the completed list. Rewards of the form
// {"xp": n, "gold": n} are granted to the character.
func (c *Container) CompleteQuest(id string) (quest.Quest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, err := c.quests.Complete(id)
	if err != nil {
		return quest.Quest{}, err
	}
	if c.character != nil && len(q.Rewards) > 0 {
		r := gjson.ParseBytes(q.Rewards)
		c.grantLocked(int(r.Get("xp").Int()), int(r.Get("gold").Int()))
	}
	return q, nil
}

// Quests returns a copy of the quest log.
func (c *Container) Quests() quest.Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quests.Clone()
}

// Travel moves to location and marks it discovered.
func (c *Container) Travel(location string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	location = strings.TrimSpace(location)
	v := &validation.Error{}
	v.Length("location", location, 1, maxLocationLength)
	if err := v.Err(); err != nil {
		return err
	}
	if c.mode != ModeExploring {
		return fmt.Errorf("travel while %s: %w", c.mode, ErrWrongMode)
	}
	c.location = location
	for _, d := range c.discovered {
		if d == location {
			return nil
		}
	}
	c.discovered = append(c.discovered, location)
	return nil
}

// Location returns the current location and every discovered location.
func (c *Container) Location() (string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location, append([]string(nil), c.discovered...)
}
