package client

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/session"
	"github.com/cory-johannsen/dungeon/internal/narrative"
)

var (
	fallbackPlayerHit = dice.MustParse("1d20+9")
	fallbackEnemyHit  = dice.MustParse("1d15+4")
)

// Driver plays a Container against the remote API.
type Driver struct {
	game   *session.Container
	client *Client
	roller *dice.Roller
	logger *zap.Logger
}

// NewDriver binds game to client. roller supplies the offline combat exchange.
//
// Precondition: all arguments must be non-nil.
func NewDriver(game *session.Container, client *Client, roller *dice.Roller, logger *zap.Logger) *Driver {
	return &Driver{game: game, client: client, roller: roller, logger: logger}
}

// Game returns the driven Container.
func (d *Driver) Game() *session.Container { return d.game }

// Client returns the underlying REST client.
func (d *Driver) Client() *Client { return d.client }

// Choose plays one narrative turn with choice. When the server fails the
// local fallback scene is applied instead; cancellation abandons the turn.
//
// Postcondition: on a nil error the response has been applied to the Container.
func (d *Driver) Choose(ctx context.Context, choice string) (narrative.Response, error) {
	t, req, err := d.game.BeginTurn(choice)
	if err != nil {
		return narrative.Response{}, err
	}
	resp, err := d.client.GenerateStory(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			d.game.Abandon(t)
			return narrative.Response{}, err
		}
		d.logger.Warn("story request failed, using local scene", zap.Error(err))
		req.Normalize()
		resp = narrative.LocalFallback(req)
	}
	if err := d.game.ApplyNarrative(t, resp); err != nil {
		if errors.Is(err, session.ErrStaleResponse) {
			return narrative.Response{}, err
		}
		d.logger.Warn("narrative applied with errors", zap.Error(err))
	}
	return resp, nil
}

// Act plays one combat round. When the server fails a generic exchange of
// blows is applied instead.
func (d *Driver) Act(ctx context.Context, action combat.Action, itemID string) (combat.Result, error) {
	t, req, err := d.game.BeginCombatTurn(action, itemID)
	if err != nil {
		return combat.Result{}, err
	}
	res, err := d.client.ResolveCombat(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			d.game.Abandon(t)
			return combat.Result{}, err
		}
		d.logger.Warn("combat request failed, using local exchange", zap.Error(err))
		res = d.fallbackExchange(req)
	}
	if err := d.game.ApplyCombat(t, res); err != nil {
		return combat.Result{}, err
	}
	return res, nil
}

// fallbackExchange trades one blow each way without consulting stats.
func (d *Driver) fallbackExchange(req combat.Request) combat.Result {
	dealt := d.roller.Roll(fallbackPlayerHit).Total()
	taken := d.roller.Roll(fallbackEnemyHit).Total()
	res := combat.Result{
		PlayerDamage: taken,
		EnemyDamage:  dealt,
		PlayerHealth: max(0, req.Player.Health-taken),
		EnemyHealth:  max(0, req.Enemy.Health-dealt),
		CombatLog: []string{
			fmt.Sprintf("You dealt %d damage!", dealt),
			fmt.Sprintf("Enemy dealt %d damage!", taken),
		},
	}
	res.Victory = res.EnemyHealth == 0
	res.Defeat = !res.Victory && res.PlayerHealth == 0
	return res
}

// SaveRemote uploads the current game and returns its save id.
func (d *Driver) SaveRemote(ctx context.Context) (string, error) {
	s, err := d.game.ToSession()
	if err != nil {
		return "", err
	}
	id, err := d.client.Save(ctx, s)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", s.SaveID, err)
	}
	d.logger.Info("game saved remotely", zap.String("save_id", id))
	return id, nil
}

// LoadRemote replaces the current game with the stored save.
func (d *Driver) LoadRemote(ctx context.Context, saveID string) error {
	s, err := d.client.Load(ctx, saveID)
	if err != nil {
		return fmt.Errorf("loading %s: %w", saveID, err)
	}
	return d.game.FromSession(*s)
}
