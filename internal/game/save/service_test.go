package save_test

import (
	"context"
	"encoding/json"
	"errors"
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

	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/save/savetest"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newService(t testing.TB) (*save.Service, *save.MemoryProfileRepository) {
	profiles := save.NewMemoryProfileRepository()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := save.NewService(save.NewMemoryRepository(), profiles, zaptest.NewLogger(t)).WithClock(c.now)
	return svc, profiles
}

func fieldsOf(t testing.TB, err error) map[string]bool {
	t.Helper()
	var verr *save.ValidationError
	require.True(t, errors.As(err, &verr), "expected *save.ValidationError, got %v", err)
	out := map[string]bool{}
	for _, f := range verr.Fields {
		out[f.Field] = true
	}
	return out
}

func TestUpsert_RoundTrip(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	id, err := svc.Upsert(ctx, savetest.NewSession("  save-1 ", "player-1"))
	require.NoError(t, err)
	assert.Equal(t, "save-1", id)

	got, err := svc.Load(ctx, "save-1")
	require.NoError(t, err)
	assert.Equal(t, save.StateActive, got.State)
	assert.Equal(t, save.DefaultLocation, got.CurrentLocation)

	p, err := profiles.Get(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PlayCount)
}

func TestUpsert_TwiceKeepsOneRecordWithSecondPayload(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	first := savetest.NewSession("save-1", "player-1")
	_, err := svc.Upsert(ctx, first)
	require.NoError(t, err)
	loaded, err := svc.Load(ctx, "save-1")
	require.NoError(t, err)
	createdAt := loaded.CreatedAt

	second := savetest.NewSession("save-1", "player-1")
	second.Character.Gold = 77
	_, err = svc.Upsert(ctx, second)
	require.NoError(t, err)

	got, err := svc.Load(ctx, "save-1")
	require.NoError(t, err)
	assert.Equal(t, 77, got.Character.Gold)
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.True(t, got.UpdatedAt.After(createdAt))

	list, err := svc.ListRecent(ctx, "player-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	p, err := profiles.Get(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PlayCount, "overwrite is not a new game")
}

func TestUpsert_ValidationReportsFields(t *testing.T) {
	svc, _ := newService(t)
	bad := savetest.NewSession("", "")
	bad.Genre = "romance"
	bad.Character.Name = " "
	bad.Inventory = inventory.Inventory{{ID: "x", Name: "X", Category: inventory.CategoryKey, Quantity: 0}}

	_, err := svc.Upsert(context.Background(), bad)
	fields := fieldsOf(t, err)
	for _, want := range []string{"saveId", "playerId", "genre", "character.name", "inventory[0].quantity"} {
		assert.True(t, fields[want], "missing violation %s in %v", want, fields)
	}
}

func TestUpsert_IDTooLong(t *testing.T) {
	svc, _ := newService(t)
	long := fmt.Sprintf("%0101d", 0)
	_, err := svc.Upsert(context.Background(), savetest.NewSession(long, "p"))
	assert.True(t, fieldsOf(t, err)["saveId"])
}

func TestUpsert_GenreCaseInsensitive(t *testing.T) {
	svc, _ := newService(t)
	s := savetest.NewSession("s", "p")
	s.Genre = "Sci-Fi"
	_, err := svc.Upsert(context.Background(), s)
	require.NoError(t, err)
	got, err := svc.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, save.GenreSciFi, got.Genre)
}

func TestUpsert_DedupesDiscoveredLocations(t *testing.T) {
	svc, _ := newService(t)
	s := savetest.NewSession("s", "p")
	s.DiscoveredLocations = []string{"village", "forest", "village", ""}
	_, err := svc.Upsert(context.Background(), s)
	require.NoError(t, err)
	got, err := svc.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"village", "forest"}, got.DiscoveredLocations)
}

func TestDelete_ThenLoadNotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Upsert(ctx, savetest.NewSession("s", "p"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "s"))
	_, err = svc.Load(ctx, "s")
	assert.ErrorIs(t, err, save.ErrNotFound)

	list, err := svc.ListRecent(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDelete_Missing(t *testing.T) {
	svc, _ := newService(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), "nope"), save.ErrNotFound)
}

func TestUpsert_DeletedIDStaysReserved(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Upsert(ctx, savetest.NewSession("s1", "alice"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "s1"))

	_, err = svc.Upsert(ctx, savetest.NewSession("s1", "mallory"))
	assert.ErrorIs(t, err, save.ErrDeleted)

	_, err = svc.Load(ctx, "s1")
	assert.ErrorIs(t, err, save.ErrNotFound)
	list, err := svc.ListRecent(ctx, "mallory")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListRecent_InvalidPlayer(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ListRecent(context.Background(), "")
	assert.True(t, fieldsOf(t, err)["playerId"])
}

func TestListRecent_EmptyIsNonNil(t *testing.T) {
	svc, _ := newService(t)
	list, err := svc.ListRecent(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
}

type failingProfiles struct{}

func (failingProfiles) Touch(context.Context, string, time.Time, bool) error {
	return errors.New("profile store down")
}

func (failingProfiles) Get(context.Context, string) (*save.Profile, error) {
	return nil, save.ErrNotFound
}

func (failingProfiles) SetDisplayName(context.Context, string, string) error {
	return errors.New("profile store down")
}

func (failingProfiles) AddAchievement(context.Context, string, string) error {
	return errors.New("profile store down")
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Upsert(ctx, savetest.NewSession("s", "p"))
	require.NoError(t, err)

	name := "  Aria the Bold "
	p, err := svc.UpdateProfile(ctx, "p", save.ProfileUpdate{
		DisplayName:  &name,
		Achievements: []string{"first_blood", "first_blood", "explorer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Aria the Bold", p.DisplayName)
	assert.Equal(t, []string{"first_blood", "explorer"}, p.Achievements)
	assert.Equal(t, 1, p.PlayCount)
}

func TestUpdateProfile_Missing(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdateProfile(context.Background(), "ghost", save.ProfileUpdate{Achievements: []string{"x"}})
	assert.ErrorIs(t, err, save.ErrNotFound)
}

func TestUpdateProfile_Invalid(t *testing.T) {
	svc, _ := newService(t)
	long := strings.Repeat("n", 51)
	_, err := svc.UpdateProfile(context.Background(), "p", save.ProfileUpdate{
		DisplayName:  &long,
		Achievements: []string{" "},
	})
	fields := fieldsOf(t, err)
	assert.True(t, fields["displayName"])
	assert.True(t, fields["achievements[0]"])

	_, err = svc.UpdateProfile(context.Background(), "p", save.ProfileUpdate{})
	assert.True(t, fieldsOf(t, err)["profile"])
}

func TestUpsert_ProfileFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := save.NewService(save.NewMemoryRepository(), failingProfiles{}, zap.New(core))

	_, err := svc.Upsert(context.Background(), savetest.NewSession("s", "p"))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("touching player profile").Len())
}

func TestSession_JSONShape(t *testing.T) {
	s := savetest.NewSession("s", "p")
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"saveId", "playerId", "character", "genre", "events", "inventory", "activeQuests", "completedQuests", "currentLocation", "discoveredLocations", "state"} {
		assert.Contains(t, m, key)
	}
}

// Health stays within bounds and level within range for anything the store accepts.
func TestUpsert_Property_StoredSessionsAreValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc, _ := newService(t)
		s := savetest.NewSession("s", "p")
		s.Character.Level = rapid.IntRange(-5, 120).Draw(rt, "level")
		s.Character.MaxHealth = rapid.IntRange(0, 300).Draw(rt, "max")
		s.Character.Health = rapid.IntRange(-10, 320).Draw(rt, "health")

		_, err := svc.Upsert(context.Background(), s)
		if err != nil {
			return
		}
		got, err := svc.Load(context.Background(), "s")
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, got.Character.Health, 0)
		assert.LessOrEqual(rt, got.Character.Health, got.Character.MaxHealth)
		assert.GreaterOrEqual(rt, got.Character.Level, 1)
		assert.LessOrEqual(rt, got.Character.Level, 100)
	})
}
