package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/scripting"
)

func writeTempLua(t *testing.T, name, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600))
	return dir
}

func newEffects(t *testing.T, dir string) (*scripting.Effects, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	e, err := scripting.NewEffects(dir, 0, dice.NewLoggedRoller(dice.NewSeededSource(1), logger), logger)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, logs
}

func wounded() character.Character {
	return character.Character{Name: "Hero", Class: character.ClassMage, Level: 2, Health: 40, MaxHealth: 100, Stats: character.DefaultStats()}
}

func TestEffects_BuiltinPotion(t *testing.T) {
	e, _ := newEffects(t, "")
	out, err := e.Apply(inventory.Item{ID: "p", Name: "Minor Health Potion", Category: inventory.CategoryPotion, Quantity: 1}, wounded())
	require.NoError(t, err)
	assert.Equal(t, inventory.PotionHeal, out.Heal)
	assert.Contains(t, out.Message, "Minor Health Potion")
}

func TestEffects_BuiltinPotionAtFullHealth(t *testing.T) {
	e, _ := newEffects(t, "")
	c := wounded()
	c.Health = c.MaxHealth
	out, err := e.Apply(inventory.Item{ID: "p", Name: "Potion", Category: inventory.CategoryPotion, Quantity: 1}, c)
	require.NoError(t, err)
	assert.Zero(t, out.Heal)
}

func TestEffects_NoHookFallsBack(t *testing.T) {
	e, _ := newEffects(t, "")
	out, err := e.Apply(inventory.Item{ID: "w", Name: "Sword", Category: inventory.CategoryWeapon, Quantity: 1}, wounded())
	require.NoError(t, err)
	assert.Zero(t, out.Heal)
	assert.Contains(t, out.Message, "nothing happens")
}

func TestEffects_CustomDirUsesDice(t *testing.T) {
	dir := writeTempLua(t, "armor.lua", `
		function on_use_armor(item, player)
			local r = engine.dice.roll("1d4+1")
			return { heal = r.total, message = player.name .. " adjusts the " .. item.name }
		end
	`)
	e, logs := newEffects(t, dir)
	out, err := e.Apply(inventory.Item{ID: "a", Name: "Leather Armor", Category: inventory.CategoryArmor, Quantity: 1}, wounded())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.Heal, 2)
	assert.LessOrEqual(t, out.Heal, 5)
	assert.Equal(t, "Hero adjusts the Leather Armor", out.Message)
	assert.Equal(t, 1, logs.FilterMessage("dice roll").Len())
}

func TestEffects_RuntimeErrorFallsBackAndWarns(t *testing.T) {
	dir := writeTempLua(t, "bad.lua", `
		function on_use_potion(item, player)
			error("boom")
		end
	`)
	e, logs := newEffects(t, dir)
	out, err := e.Apply(inventory.Item{ID: "p", Name: "Potion", Category: inventory.CategoryPotion, Quantity: 1}, wounded())
	require.NoError(t, err)
	assert.Equal(t, inventory.PotionHeal, out.Heal)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestEffects_RunawayHookIsStopped(t *testing.T) {
	dir := writeTempLua(t, "loop.lua", `
		function on_use_key(item, player)
			while true do end
		end
	`)
	e, logs := newEffects(t, dir)
	_, err := e.Apply(inventory.Item{ID: "k", Name: "Key", Category: inventory.CategoryKey, Quantity: 1}, wounded())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())

	// The VM stays usable after an aborted call.
	_, err = e.Apply(inventory.Item{ID: "k", Name: "Key", Category: inventory.CategoryKey, Quantity: 1}, wounded())
	require.NoError(t, err)
}

func TestEffects_LogModule(t *testing.T) {
	e, logs := newEffects(t, "")
	_, err := e.Apply(inventory.Item{ID: "iron_key", Name: "Iron Key", Category: inventory.CategoryKey, Quantity: 1}, wounded())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("lua").Len())
}

func TestNewEffects_SyntaxError(t *testing.T) {
	dir := writeTempLua(t, "broken.lua", `function (`)
	logger := zap.NewNop()
	_, err := scripting.NewEffects(dir, 0, dice.NewLoggedRoller(dice.NewSeededSource(1), logger), logger)
	assert.Error(t, err)
}

func TestNewEffects_MissingDir(t *testing.T) {
	logger := zap.NewNop()
	_, err := scripting.NewEffects(filepath.Join(t.TempDir(), "nope"), 0, dice.NewLoggedRoller(dice.NewSeededSource(1), logger), logger)
	assert.Error(t, err)
}
