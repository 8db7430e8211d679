//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/api"
	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/scripting"
	"github.com/cory-johannsen/dungeon/internal/server"
)

func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*server.Lifecycle, func(), error) {
	wire.Build(
		wire.FieldsOf(new(config.Config), "Server", "Database", "Narrator", "Scripting", "Health"),
		provideStores,
		provideSaveService,
		provideRoller,
		provideEffects,
		wire.Bind(new(inventory.EffectApplier), new(*scripting.Effects)),
		combat.NewResolver,
		provideNarrator,
		api.NewHandler,
		provideLifecycle,
	)
	return nil, nil, nil
}
