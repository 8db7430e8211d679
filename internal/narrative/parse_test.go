package narrative_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/narrative"
)

func TestParse_FullPayload(t *testing.T) {
	raw := `{
		"story": "A troll blocks the bridge.",
		"choices": ["Fight", "Pay the toll", "Swim"],
		"enemy": {"name": "Bridge Troll", "health": 40, "attack": 9, "defense": 2},
		"items": [{"id": "troll_tooth", "name": "Troll Tooth", "type": "trophy", "effect": "gross"}]
	}`
	resp, err := narrative.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "A troll blocks the bridge.", resp.Story)
	assert.Equal(t, []string{"Fight", "Pay the toll", "Swim"}, resp.Choices)
	require.NotNil(t, resp.Enemy)
	assert.True(t, strings.HasPrefix(resp.Enemy.ID, "enemy_"))
	assert.Equal(t, 40, resp.Enemy.MaxHealth, "maxHealth defaults to health")
	assert.Equal(t, 9, resp.Enemy.Attack)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, inventory.CategoryQuest, resp.Items[0].Category, "unknown category coerced")
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestParse_CodeFence(t *testing.T) {
	raw := "Here you go:\n```json\n{\"story\":\"fenced\",\"choices\":[\"a\",\"b\",\"c\"]}\n```"
	resp, err := narrative.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "fenced", resp.Story)
}

func TestParse_MissingStory(t *testing.T) {
	resp, err := narrative.Parse(`{"story": "   ", "choices": ["a","b","c"]}`)
	require.NoError(t, err)
	assert.Equal(t, narrative.FallbackStory, resp.Story)
}

func TestParse_Choices(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
		want []string
	}{
		{"missing", `{"story":"s"}`, narrative.GenericChoices},
		{"not an array", `{"story":"s","choices":"go"}`, narrative.GenericChoices},
		{"non-string entry", `{"story":"s","choices":["a",2,"c"]}`, narrative.GenericChoices},
		{"empty entry", `{"story":"s","choices":["a","","c"]}`, narrative.GenericChoices},
		{"too many", `{"story":"s","choices":["a","b","c","d"]}`, []string{"a", "b", "c"}},
		{"too few", `{"story":"s","choices":["a"]}`, []string{"a", "Continue forward", "Look around"}},
		{"few with generic", `{"story":"s","choices":["Look around"]}`, []string{"Look around", "Continue forward", "Rest"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := narrative.Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Choices)
		})
	}
}

func TestParse_RejectsEnemyWithoutHealthOrName(t *testing.T) {
	resp, err := narrative.Parse(`{"story":"s","enemy":{"name":"Ghost","health":0}}`)
	require.NoError(t, err)
	assert.Nil(t, resp.Enemy)

	resp, err = narrative.Parse(`{"story":"s","enemy":{"name":"","health":10}}`)
	require.NoError(t, err)
	assert.Nil(t, resp.Enemy)
}

func TestParse_EnemyDefaults(t *testing.T) {
	resp, err := narrative.Parse(`{"story":"s","enemy":{"name":"Rat","health":6,"maxHealth":3,"defense":-2}}`)
	require.NoError(t, err)
	require.NotNil(t, resp.Enemy)
	assert.Equal(t, 6, resp.Enemy.MaxHealth)
	assert.Equal(t, 5, resp.Enemy.Attack)
	assert.Equal(t, 0, resp.Enemy.Defense)
}

func TestParse_SkipsIncompleteItems(t *testing.T) {
	resp, err := narrative.Parse(`{"story":"s","items":[{"id":"x"},{"name":"y"},{"id":"k","name":"Key","type":"KEY","quantity":2}]}`)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, inventory.CategoryKey, resp.Items[0].Category)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{not json}", "[1,2,3]"} {
		_, err := narrative.Parse(raw)
		assert.ErrorIs(t, err, narrative.ErrMalformedPayload, raw)
	}
}

func TestParse_Property_AlwaysThreeChoices(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		choices := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z ]{0,12}`), 0, 6).Draw(rt, "choices")
		quoted := make([]string, len(choices))
		for i, c := range choices {
			quoted[i] = `"` + c + `"`
		}
		raw := `{"story":"x","choices":[` + strings.Join(quoted, ",") + `]}`

		resp, err := narrative.Parse(raw)
		require.NoError(rt, err)
		assert.Len(rt, resp.Choices, 3)
		for _, c := range resp.Choices {
			assert.NotEmpty(rt, strings.TrimSpace(c))
		}
	})
}
