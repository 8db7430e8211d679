package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// goldReward is rolled on every victory and yields a value in [10, 30).
var goldReward = dice.MustParse("1d20+9")

// Resolver computes combat turns. It holds no per-duel state; the caller
// re-supplies both participants every turn.
type Resolver struct {
	roller  *dice.Roller
	effects inventory.EffectApplier
	logger  *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: roller and logger must be non-nil. A nil effects falls back
// to inventory.DefaultEffects.
func NewResolver(roller *dice.Roller, effects inventory.EffectApplier, logger *zap.Logger) *Resolver {
	if effects == nil {
		effects = inventory.DefaultEffects{}
	}
	return &Resolver{roller: roller, effects: effects, logger: logger}
}

// Resolve applies req.Action and reports the damage exchange and outcome.
//
// attack: enemy takes max(1, U[0,str)+5-defense); player takes max(1, U[0,atk)-con/5).
// defend: player takes U[0,atk)/2; enemy takes nothing.
// use-item: the item's effect is applied and one unit consumed; no damage is exchanged.
// run: escape on a coin flip; otherwise the player takes atk/2.
//
// Victory is checked before defeat.
//
// Precondition: both participants have positive health.
// Postcondition: health values are in [0, max]; a *validation.Error is
// returned for any invalid input.
func (r *Resolver) Resolve(req Request) (Result, error) {
	req.Action, _ = ParseAction(string(req.Action))
	if err := validate(req); err != nil {
		return Result{}, err
	}

	player := req.Player
	enemy := req.Enemy
	enemy.MaxHealth = max(enemy.EffectiveMaxHealth(), enemy.Health)
	atk := enemy.EffectiveAttack()

	res := Result{}
	var toEnemy, toPlayer int

	switch req.Action {
	case ActionAttack:
		toEnemy = max(1, dice.Below(r.roller, player.Stats.Strength)+5-enemy.Defense)
		toPlayer = max(1, dice.Below(r.roller, atk)-player.Stats.Constitution/5)
		res.CombatLog = append(res.CombatLog,
			fmt.Sprintf("You attack %s for %d damage!", enemy.Name, toEnemy),
			fmt.Sprintf("%s strikes back for %d damage!", enemy.Name, toPlayer),
		)

	case ActionDefend:
		toPlayer = dice.Below(r.roller, atk) / 2
		res.CombatLog = append(res.CombatLog,
			"You brace for defense!",
			fmt.Sprintf("%s attacks but you block most damage! (%d damage)", enemy.Name, toPlayer),
		)

	case ActionUseItem:
		inv := req.Inventory.Clone()
		item, ok := inv.Find(req.ItemID)
		if !ok {
			v := &validation.Error{}
			v.Addf("itemId", "item %q is not in the inventory", req.ItemID)
			return Result{}, v
		}
		outcome, err := r.effects.Apply(item, player)
		if err != nil {
			return Result{}, fmt.Errorf("applying effect of %q: %w", item.ID, err)
		}
		if _, err := inv.Consume(item.ID, 1); err != nil {
			return Result{}, fmt.Errorf("consuming %q: %w", item.ID, err)
		}
		healed := player.Heal(max(0, outcome.Heal))
		res.Inventory = inv
		if inv == nil {
			res.Inventory = inventory.Inventory{}
		}
		res.CombatLog = append(res.CombatLog, outcome.Message)
		if healed > 0 {
			res.CombatLog = append(res.CombatLog, fmt.Sprintf("You recover %d health.", healed))
		}

	case ActionRun:
		if dice.Chance(r.roller, 1, 2) {
			res.PlayerHealth = player.Health
			res.EnemyHealth = enemy.Health
			res.Escaped = true
			res.CombatLog = []string{"You successfully escaped!"}
			r.logger.Debug("combat escape", zap.String("enemy", enemy.Name))
			return res, nil
		}
		toPlayer = atk / 2
		res.CombatLog = append(res.CombatLog,
			fmt.Sprintf("Escape failed! %s strikes as you flee! (%d damage)", enemy.Name, toPlayer),
		)
	}

	res.PlayerDamage = player.TakeDamage(toPlayer)
	res.EnemyDamage = min(toEnemy, enemy.Health)
	enemy.Health -= res.EnemyDamage
	res.PlayerHealth = player.Health
	res.EnemyHealth = enemy.Health

	switch {
	case enemy.Health <= 0:
		gold := r.roller.Roll(goldReward).Total()
		xp := 2 * enemy.MaxHealth
		res.Victory = true
		res.Rewards = &Rewards{XP: xp, Gold: gold, Items: []inventory.Item{}}
		res.CombatLog = append(res.CombatLog, fmt.Sprintf("Victory! You earned %d XP and %d gold!", xp, gold))
	case player.Health <= 0:
		res.Defeat = true
		res.CombatLog = append(res.CombatLog, "You have been defeated...")
	}

	r.logger.Debug("combat turn",
		zap.String("action", string(req.Action)),
		zap.String("enemy", enemy.Name),
		zap.Int("player_damage", res.PlayerDamage),
		zap.Int("enemy_damage", res.EnemyDamage),
		zap.Bool("victory", res.Victory),
		zap.Bool("defeat", res.Defeat),
	)
	return res, nil
}

func validate(req Request) error {
	v := &validation.Error{}
	v.OneOf("action", string(req.Action), actionNames())
	if req.Player.Health <= 0 {
		v.Addf("player.health", "must be positive to fight, got %d", req.Player.Health)
	}
	if req.Player.MaxHealth < req.Player.Health {
		v.Addf("player.maxHealth", "must be at least health %d, got %d", req.Player.Health, req.Player.MaxHealth)
	}
	if req.Enemy.Health <= 0 {
		v.Addf("enemy.health", "must be positive to fight, got %d", req.Enemy.Health)
	}
	v.Length("enemy.name", req.Enemy.Name, 1, 100)
	v.NonNegative("enemy.defense", req.Enemy.Defense)
	if req.Action == ActionUseItem && req.ItemID == "" {
		v.Addf("itemId", "is required for %s", ActionUseItem)
	}
	return v.Err()
}

func actionNames() []string {
	out := make([]string, len(Actions))
	for i, a := range Actions {
		out[i] = string(a)
	}
	return out
}
