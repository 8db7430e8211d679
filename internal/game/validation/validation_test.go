package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

func TestErr_NilWhenEmpty(t *testing.T) {
	var v validation.Error
	assert.NoError(t, v.Err())

	var nilErr *validation.Error
	assert.NoError(t, nilErr.Err())
}

func TestErr_CollectsAllFields(t *testing.T) {
	var v validation.Error
	v.Length("name", "   ", 1, 50)
	v.Range("level", 0, 1, 100)
	v.OneOf("genre", "romance", []string{"fantasy", "horror"})
	v.NonNegative("gold", -1)

	err := v.Err()
	require.Error(t, err)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 4)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Equal(t, "is required", verr.Fields[0].Message)
	assert.Contains(t, err.Error(), "level")
}

func TestMerge_PrefixesFields(t *testing.T) {
	var inner validation.Error
	inner.Addf("name", "bad")

	var outer validation.Error
	outer.Merge("character", &inner)
	outer.Merge("ignored", nil)

	require.Len(t, outer.Fields, 1)
	assert.Equal(t, "character.name", outer.Fields[0].Field)
}

func TestLength_CountsRunesAfterTrim(t *testing.T) {
	var v validation.Error
	v.Length("name", "  Ærwyn  ", 1, 5)
	assert.NoError(t, v.Err())

	v.Length("name", "toolongname", 1, 5)
	assert.Error(t, v.Err())
}

func TestRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+200).Draw(rt, "hi")
		x := rapid.IntRange(-500, 500).Draw(rt, "x")

		var v validation.Error
		v.Range("x", x, lo, hi)
		assert.Equal(rt, x < lo || x > hi, v.Err() != nil)
	})
}
