package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/api"
	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/narrative"
	"github.com/cory-johannsen/dungeon/internal/scripting"
	"github.com/cory-johannsen/dungeon/internal/server"
	"github.com/cory-johannsen/dungeon/internal/storage/postgres"
)

// stores pairs the save and profile repositories of one backend.
type stores struct {
	saves    save.Repository
	profiles save.ProfileRepository
}

func provideStores(ctx context.Context, sc config.ServerConfig, db config.DatabaseConfig, logger *zap.Logger) (stores, func(), error) {
	if sc.Store != config.StorePostgres {
		logger.Warn("using in-memory save store; saves are lost on restart")
		return stores{saves: save.NewMemoryRepository(), profiles: save.NewMemoryProfileRepository()}, func() {}, nil
	}
	if db.AutoMigrate {
		if err := postgres.Migrate(db.DSN(), logger); err != nil {
			return stores{}, nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, db)
	if err != nil {
		return stores{}, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("database connected", zap.String("host", db.Host), zap.String("name", db.Name))
	return stores{
		saves:    postgres.NewSaveRepository(pool.DB()),
		profiles: postgres.NewProfileRepository(pool.DB()),
	}, pool.Close, nil
}

func provideSaveService(st stores, logger *zap.Logger) *save.Service {
	return save.NewService(st.saves, st.profiles, logger)
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

func provideEffects(sc config.ScriptingConfig, roller *dice.Roller, logger *zap.Logger) (*scripting.Effects, func(), error) {
	fx, err := scripting.NewEffects(sc.EffectsDir, sc.InstructionLimit, roller, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading item effects: %w", err)
	}
	return fx, fx.Close, nil
}

func provideNarrator(ctx context.Context, nc config.NarratorConfig, logger *zap.Logger) (*narrative.Generator, func(), error) {
	provider, cleanup, err := narrative.NewProvider(ctx, nc)
	if err != nil {
		return nil, nil, err
	}
	gen, err := narrative.NewGenerator(provider, nc.Timeout, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return gen, cleanup, nil
}

func provideLifecycle(sc config.ServerConfig, hc config.HealthConfig, h *api.Handler, saves *save.Service, logger *zap.Logger) (*server.Lifecycle, error) {
	lc := server.NewLifecycle(logger, sc.ShutdownTimeout)
	httpSvc, err := server.NewHTTPService(sc, h.Routes())
	if err != nil {
		return nil, err
	}
	lc.Add("http", httpSvc)

	if hc.GRPCPort == 0 {
		return lc, nil
	}
	health, err := server.NewHealthService(hc, saves, logger)
	if err != nil {
		_ = httpSvc.Shutdown(context.Background())
		return nil, err
	}
	lc.Add("grpc-health", health)
	return lc, nil
}
