// Package main is a line-oriented terminal front end for the dungeon API.
// Games are kept in local save slots and auto-saved while in progress.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/client"
	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/session"
	"github.com/cory-johannsen/dungeon/internal/game/slots"
	"github.com/cory-johannsen/dungeon/internal/observability"
	"github.com/cory-johannsen/dungeon/internal/scripting"
	"github.com/cory-johannsen/dungeon/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and environment")
	serverURL := flag.String("server", "http://localhost:8000", "dungeon API base URL")
	playerID := flag.String("player", "", "player id; empty generates one")
	flag.Parse()

	if err := run(*configPath, *serverURL, *playerID); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, serverURL, playerID string) error {
	var (
		cfg config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.LoadFromViper(config.Defaults())
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if playerID == "" {
		playerID = "player_" + uuid.NewString()
	}

	logger, err := observability.NewLogger(cfg.Logging, "dungeon-play")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.Open(cfg.Slots.Path)
	if err != nil {
		return fmt.Errorf("opening save slots: %w", err)
	}
	defer store.Close()
	manager := slots.NewManager(store, cfg.Slots.MaxSlots, logger)

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
	effects, err := scripting.NewEffects(cfg.Scripting.EffectsDir, cfg.Scripting.InstructionLimit, roller, logger)
	if err != nil {
		return fmt.Errorf("loading item effects: %w", err)
	}
	defer effects.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	game := session.NewContainer(playerID).WithEffects(effects)
	resume(ctx, manager, game, logger)

	saver := slots.NewAutoSaver(manager, game, cfg.Slots.AutoSaveInterval, logger)
	go func() { _ = saver.Serve() }()
	defer func() { _ = saver.Shutdown(context.Background()) }()

	driver := client.NewDriver(game, client.New(serverURL, nil, logger), roller, logger)
	if err := driver.Client().Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server unavailable (%v); playing with local scenes\n", err)
	}
	r := newRepl(driver, manager, os.Stdout)
	done := make(chan error, 1)
	go func() { done <- r.run(ctx, os.Stdin) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout)
		return nil
	}
}

// resume restores the last auto-save when one exists.
func resume(ctx context.Context, manager *slots.Manager, game *session.Container, logger *zap.Logger) {
	raw, ok := manager.LastAutoSave(ctx)
	if !ok {
		return
	}
	var doc session.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Warn("ignoring unreadable auto-save", zap.Error(err))
		return
	}
	if err := game.Restore(doc); err != nil {
		logger.Warn("ignoring invalid auto-save", zap.Error(err))
	}
}
