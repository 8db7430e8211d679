package inventory_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

func characterFixture() character.Character {
	return character.Character{Name: "Hero", Class: character.ClassWarrior, Gender: character.GenderOther, Level: 1, Health: 50, MaxHealth: 100}
}

func TestDefaultCatalog_HasMinorHealthPotion(t *testing.T) {
	cat, err := inventory.DefaultCatalog()
	require.NoError(t, err)

	def, ok := cat.Item("minor_health_potion")
	require.True(t, ok)
	item := def.NewItem(1)
	assert.Equal(t, inventory.CategoryPotion, item.Category)
	assert.Nil(t, item.Validate())
}

func TestLoadCatalog_DuplicateIDFails(t *testing.T) {
	fsys := fstest.MapFS{
		"items/a.yaml": {Data: []byte("- id: x\n  name: X\n  category: key\n")},
		"items/b.yaml": {Data: []byte("- id: x\n  name: Other\n  category: key\n")},
	}
	_, err := inventory.LoadCatalog(fsys, "items")
	assert.Error(t, err)
}

func TestLoadCatalog_SkipsNonYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"items/a.yaml":    {Data: []byte("- id: x\n  name: X\n  category: relic\n")},
		"items/README.md": {Data: []byte("not yaml")},
	}
	cat, err := inventory.LoadCatalog(fsys, "items")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, cat.IDs())

	def, _ := cat.Item("x")
	assert.Equal(t, inventory.CategoryQuest, def.NewItem(2).Category)
}

func TestLoadCatalog_MissingDir(t *testing.T) {
	_, err := inventory.LoadCatalog(fstest.MapFS{}, "nope")
	assert.Error(t, err)
}
