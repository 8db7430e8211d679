package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

func potion(qty int) inventory.Item {
	return inventory.Item{ID: "health_potion", Name: "Health Potion", Category: inventory.CategoryPotion, Quantity: qty}
}

func TestInventory_Add_MergesSameID(t *testing.T) {
	var inv inventory.Inventory
	require.NoError(t, inv.Add(potion(1)))
	require.NoError(t, inv.Add(potion(2)))

	require.Len(t, inv, 1)
	assert.Equal(t, 3, inv[0].Quantity)
}

func TestInventory_Add_PreservesOrder(t *testing.T) {
	var inv inventory.Inventory
	require.NoError(t, inv.Add(potion(1)))
	require.NoError(t, inv.Add(inventory.Item{ID: "key", Name: "Key", Category: inventory.CategoryKey, Quantity: 1}))
	require.NoError(t, inv.Add(potion(1)))

	require.Len(t, inv, 2)
	assert.Equal(t, "health_potion", inv[0].ID)
	assert.Equal(t, "key", inv[1].ID)
}

func TestInventory_Add_RejectsInvalid(t *testing.T) {
	var inv inventory.Inventory
	assert.Error(t, inv.Add(potion(0)))
	assert.Error(t, inv.Add(inventory.Item{ID: "x", Name: "X", Category: "gem", Quantity: 1}))
	assert.Empty(t, inv)
}

func TestInventory_Consume_RemovesAtZero(t *testing.T) {
	inv := inventory.Inventory{potion(1)}
	before, err := inv.Consume("health_potion", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, before.Quantity)
	assert.Empty(t, inv)
}

func TestInventory_Consume_Errors(t *testing.T) {
	inv := inventory.Inventory{potion(1)}

	_, err := inv.Consume("missing", 1)
	assert.True(t, errors.Is(err, inventory.ErrItemNotFound))

	_, err = inv.Consume("health_potion", 2)
	assert.True(t, errors.Is(err, inventory.ErrInsufficientQuantity))
	assert.Equal(t, 1, inv[0].Quantity, "failed consume must not mutate")
}

func TestInventory_Remove(t *testing.T) {
	inv := inventory.Inventory{potion(5)}
	require.NoError(t, inv.Remove("health_potion"))
	assert.Empty(t, inv)
	assert.ErrorIs(t, inv.Remove("health_potion"), inventory.ErrItemNotFound)
}

func TestInventory_Clone_Independent(t *testing.T) {
	inv := inventory.Inventory{potion(2)}
	c := inv.Clone()
	c[0].Quantity = 9
	assert.Equal(t, 2, inv[0].Quantity)
}

func TestCoerceCategory(t *testing.T) {
	assert.Equal(t, inventory.CategoryWeapon, inventory.CoerceCategory(" Weapon "))
	assert.Equal(t, inventory.CategoryQuest, inventory.CoerceCategory("amulet"))
	assert.Equal(t, inventory.CategoryQuest, inventory.CoerceCategory(""))
}

func TestDefaultEffects(t *testing.T) {
	out, err := inventory.DefaultEffects{}.Apply(potion(1), characterFixture())
	require.NoError(t, err)
	assert.Equal(t, inventory.PotionHeal, out.Heal)

	out, err = inventory.DefaultEffects{}.Apply(inventory.Item{ID: "k", Name: "Key", Category: inventory.CategoryKey, Quantity: 1}, characterFixture())
	require.NoError(t, err)
	assert.Zero(t, out.Heal)
}

// Quantities stay positive and ids unique under any sequence of adds and consumes.
func TestInventory_Property_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var inv inventory.Inventory
		ids := []string{"a", "b", "c"}
		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			qty := rapid.IntRange(1, 5).Draw(rt, "qty")
			if rapid.Bool().Draw(rt, "add") {
				require.NoError(rt, inv.Add(inventory.Item{ID: id, Name: id, Category: inventory.CategoryQuest, Quantity: qty}))
			} else {
				_, _ = inv.Consume(id, qty)
			}

			seen := map[string]bool{}
			for _, it := range inv {
				assert.GreaterOrEqual(rt, it.Quantity, 1)
				assert.False(rt, seen[it.ID], "duplicate id %s", it.ID)
				seen[it.ID] = true
			}
		}
	})
}
