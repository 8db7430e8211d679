package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_AllBuiltinsResolve(t *testing.T) {
	r := DefaultRegistry()
	for _, c := range BuiltinCommands() {
		got, ok := r.Resolve(c.Name)
		require.True(t, ok, c.Name)
		assert.Equal(t, c.Handler, got.Handler)
		for _, a := range c.Aliases {
			got, ok := r.Resolve(a)
			require.True(t, ok, a)
			assert.Equal(t, c.Name, got.Name)
		}
	}
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "attack"}, {Name: "attack"}})
	assert.ErrorContains(t, err, "duplicate command name")

	_, err = NewRegistry([]Command{{Name: "attack", Aliases: []string{"a"}}, {Name: "apply", Aliases: []string{"a"}}})
	assert.ErrorContains(t, err, "duplicate alias")

	_, err = NewRegistry([]Command{{Name: "run"}, {Name: "flee", Aliases: []string{"run"}}})
	assert.ErrorContains(t, err, "conflicts with a command name")

	_, err = NewRegistry([]Command{{Name: "flee", Aliases: []string{"run"}}, {Name: "run"}})
	assert.ErrorContains(t, err, "conflicts with an existing alias")
}

func TestLookup(t *testing.T) {
	r := DefaultRegistry()

	cmd, p, err := r.Lookup("2")
	require.NoError(t, err)
	assert.Equal(t, HandlerChoose, cmd.Handler)
	assert.Equal(t, []string{"2"}, p.Args)

	cmd, p, err = r.Lookup("> sneak past the guard")
	require.NoError(t, err)
	assert.Equal(t, HandlerDo, cmd.Handler)
	assert.Equal(t, "sneak past the guard", p.RawArgs)

	cmd, _, err = r.Lookup("")
	assert.NoError(t, err)
	assert.Nil(t, cmd)

	_, _, err = r.Lookup("dance")
	assert.True(t, errors.Is(err, ErrUnknown))

	_, _, err = r.Lookup("save")
	assert.ErrorContains(t, err, "usage: save <slot>")
}

func TestHelp_ListsEveryCategory(t *testing.T) {
	help := DefaultRegistry().Help()
	for _, cat := range []string{CategoryStory, CategoryCombat, CategoryPlayer, CategorySaves, CategorySystem} {
		assert.Contains(t, help, cat+":")
	}
	assert.Contains(t, help, "new <name>")
}
