package slots_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/slots"
)

func tickingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newManager(t testing.TB, store slots.Store) *slots.Manager {
	return slots.NewManager(store, 3, zaptest.NewLogger(t)).WithClock(tickingClock())
}

func TestSave_LoadRoundTrip(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	require.True(t, m.Save(ctx, "slot-1", "Before the crypt", map[string]any{"gold": 12}))

	var got map[string]any
	require.True(t, m.LoadInto(ctx, "slot-1", &got))
	assert.EqualValues(t, 12, got["gold"])
}

func TestSave_OverwriteInPlace(t *testing.T) {
	store := newMemStore()
	m := newManager(t, store)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, m.Save(ctx, id, id, id))
	}
	require.True(t, m.Save(ctx, "a", "renamed", "new"))

	assert.Len(t, m.List(ctx), 3)
	raw, ok := m.Load(ctx, "a")
	require.True(t, ok)
	assert.JSONEq(t, `"new"`, string(raw))
}

func TestSave_EvictsOldest(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.True(t, m.Save(ctx, id, id, id))
	}
	_, ok := m.Load(ctx, "a")
	assert.False(t, ok)
	_, ok = m.Load(ctx, "d")
	assert.True(t, ok)
}

func TestAutoSave_OutsideLimit(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, m.Save(ctx, id, id, id))
	}
	require.True(t, m.AutoSave(ctx, "auto"))

	assert.Len(t, m.List(ctx), 4)
	raw, ok := m.LastAutoSave(ctx)
	require.True(t, ok)
	assert.JSONEq(t, `"auto"`, string(raw))
}

func TestList_NewestFirst(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, m.Save(ctx, id, id, id))
	}
	list := m.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestDelete(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	require.True(t, m.Save(ctx, "a", "a", 1))
	assert.True(t, m.Delete(ctx, "a"))
	assert.True(t, m.Delete(ctx, "a"), "deleting a missing slot succeeds")
	_, ok := m.Load(ctx, "a")
	assert.False(t, ok)
}

func TestExportImport(t *testing.T) {
	src := newManager(t, newMemStore())
	ctx := context.Background()
	require.True(t, src.Save(ctx, "hero", "Hero run", map[string]int{"level": 4}))

	exported, ok := src.Export(ctx, "hero")
	require.True(t, ok)
	assert.True(t, strings.Contains(exported, "\n  "), "export is indented")

	dst := newManager(t, newMemStore())
	require.True(t, dst.Import(ctx, exported))
	var got map[string]int
	require.True(t, dst.LoadInto(ctx, "hero", &got))
	assert.Equal(t, 4, got["level"])

	_, ok = src.Export(ctx, "missing")
	assert.False(t, ok)
}

func TestImport_RespectsLimit(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, m.Save(ctx, id, id, id))
	}
	require.True(t, m.Import(ctx, `{"id":"imported","name":"Imported","data":{"x":1}}`))
	assert.Len(t, m.List(ctx), 3)
	_, ok := m.Load(ctx, "a")
	assert.False(t, ok)
}

func TestImport_RejectsGarbage(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	assert.False(t, m.Import(ctx, "not json"))
	assert.False(t, m.Import(ctx, `{"id":"","name":"x","data":{}}`))
	assert.False(t, m.Import(ctx, `{"id":"x","name":"x"}`))
}

func TestClear(t *testing.T) {
	m := newManager(t, newMemStore())
	ctx := context.Background()
	require.True(t, m.Save(ctx, "a", "a", 1))
	require.True(t, m.AutoSave(ctx, 2))
	require.True(t, m.Clear(ctx))
	assert.Empty(t, m.List(ctx))
}

func TestStorageErrorsAreLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := newMemStore()
	store.failAll = true
	m := slots.NewManager(store, 3, zap.New(core))
	ctx := context.Background()

	assert.False(t, m.Save(ctx, "a", "a", 1))
	_, ok := m.Load(ctx, "a")
	assert.False(t, ok)
	assert.False(t, m.Delete(ctx, "a"))
	assert.NotNil(t, m.List(ctx))
	assert.Empty(t, m.List(ctx))
	assert.False(t, m.Clear(ctx))
	_, ok = m.Export(ctx, "a")
	assert.False(t, ok)

	assert.GreaterOrEqual(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), 6)
}

func TestSave_UnmarshalableData(t *testing.T) {
	m := newManager(t, newMemStore())
	assert.False(t, m.Save(context.Background(), "a", "a", func() {}))
}

// Named slots never exceed the limit and the newest save always survives.
func TestManager_Property_LimitHolds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 5).Draw(rt, "limit")
		m := slots.NewManager(newMemStore(), limit, zap.NewNop()).WithClock(tickingClock())
		ctx := context.Background()

		ops := rapid.SliceOfN(rapid.IntRange(0, 8), 1, 40).Draw(rt, "ops")
		for _, op := range ops {
			id := fmt.Sprintf("slot-%d", op)
			if op == 8 {
				id = slots.AutoSaveID
			}
			require.True(rt, m.Save(ctx, id, id, op))
			_, ok := m.Load(ctx, id)
			assert.True(rt, ok)

			named := 0
			for _, s := range m.List(ctx) {
				if s.ID != slots.AutoSaveID {
					named++
				}
			}
			assert.LessOrEqual(rt, named, limit)
		}
	})
}

func TestSlot_JSONShape(t *testing.T) {
	raw, err := json.Marshal(slots.Slot{ID: "a", Name: "A", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"timestamp"`)
}
