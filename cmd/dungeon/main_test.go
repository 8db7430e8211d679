package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dungeon/internal/config"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	return cfg
}

func TestInitializeApp_InMemoryOffline(t *testing.T) {
	cfg := defaultConfig(t)
	lc, cleanup, err := initializeApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, lc.Run(ctx))
}

func TestInitializeApp_UnknownProvider(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Narrator.Provider = "oracle"
	_, _, err := initializeApp(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unknown narrator provider")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(t.TempDir() + "/absent.yaml")
	assert.Error(t, err)
}
