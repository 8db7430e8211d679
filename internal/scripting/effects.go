package scripting

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

//go:embed effects/*.lua
var defaultScripts embed.FS

// Effects is an inventory.EffectApplier backed by Lua hooks. Using an item of
// category c calls the global on_use_<c>(item, player) which returns a table
// {heal = n, message = "..."}. Categories without a hook, and hooks that fail
// at runtime, fall back to inventory.DefaultEffects.
//
// Effects is safe for concurrent use; calls are serialized on one VM.
type Effects struct {
	mu       sync.Mutex
	L        *lua.LState
	limit    int
	roller   *dice.Roller
	logger   *zap.Logger
	fallback inventory.EffectApplier
}

var _ inventory.EffectApplier = (*Effects)(nil)

// NewEffects creates a VM, registers the engine.* modules and executes every
// *.lua file in dir in lexicographic order. An empty dir loads the built-in
// scripts.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a ready Effects or an error on any Lua load failure.
func NewEffects(dir string, instLimit int, roller *dice.Roller, logger *zap.Logger) (*Effects, error) {
	var fsys fs.FS = defaultScripts
	root := "effects"
	if dir != "" {
		fsys = os.DirFS(dir)
		root = "."
	}

	e := &Effects{
		L:        NewSandboxedState(),
		limit:    instLimit,
		roller:   roller,
		logger:   logger,
		fallback: inventory.DefaultEffects{},
	}
	e.RegisterModules(e.L)

	if err := e.load(fsys, root); err != nil {
		e.L.Close()
		return nil, err
	}
	return e, nil
}

func (e *Effects) load(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", root, err)
	}
	var files []string
	for _, ent := range entries {
		if !ent.IsDir() && path.Ext(ent.Name()) == ".lua" {
			files = append(files, path.Join(root, ent.Name()))
		}
	}
	sort.Strings(files)

	for _, p := range files {
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", p, err)
		}
		release := Arm(e.L, e.limit)
		err = e.L.DoString(string(src))
		release()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", p, err)
		}
	}
	e.logger.Debug("item effect scripts loaded", zap.Strings("files", files))
	return nil
}

// Close releases the VM.
func (e *Effects) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}

// Apply implements inventory.EffectApplier.
func (e *Effects) Apply(item inventory.Item, c character.Character) (inventory.Outcome, error) {
	hook := "on_use_" + string(item.Category)

	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.L.GetGlobal(hook)
	if fn == lua.LNil {
		return e.fallback.Apply(item, c)
	}

	release := Arm(e.L, e.limit)
	err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, itemTable(e.L, item), playerTable(e.L, c))
	release()
	if err != nil {
		e.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.String("item", item.ID),
			zap.Error(err),
		)
		return e.fallback.Apply(item, c)
	}

	ret := e.L.Get(-1)
	e.L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		e.logger.Warn("scripting: hook returned non-table",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return e.fallback.Apply(item, c)
	}

	out := inventory.Outcome{Message: "You use the " + item.Name + "."}
	if n, ok := tbl.RawGetString("heal").(lua.LNumber); ok && n > 0 {
		out.Heal = int(n)
	}
	if s, ok := tbl.RawGetString("message").(lua.LString); ok && s != "" {
		out.Message = string(s)
	}
	return out, nil
}

func itemTable(L *lua.LState, it inventory.Item) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(it.ID))
	L.SetField(t, "name", lua.LString(it.Name))
	L.SetField(t, "type", lua.LString(it.Category))
	L.SetField(t, "effect", lua.LString(it.Effect))
	L.SetField(t, "quantity", lua.LNumber(it.Quantity))
	return t
}

func playerTable(L *lua.LState, c character.Character) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "class", lua.LString(c.Class))
	L.SetField(t, "level", lua.LNumber(c.Level))
	L.SetField(t, "health", lua.LNumber(c.Health))
	L.SetField(t, "max_health", lua.LNumber(c.MaxHealth))
	stats := L.NewTable()
	L.SetField(stats, "strength", lua.LNumber(c.Stats.Strength))
	L.SetField(stats, "intelligence", lua.LNumber(c.Stats.Intelligence))
	L.SetField(stats, "wisdom", lua.LNumber(c.Stats.Wisdom))
	L.SetField(stats, "dexterity", lua.LNumber(c.Stats.Dexterity))
	L.SetField(stats, "constitution", lua.LNumber(c.Stats.Constitution))
	L.SetField(stats, "charisma", lua.LNumber(c.Stats.Charisma))
	L.SetField(t, "stats", stats)
	return t
}
