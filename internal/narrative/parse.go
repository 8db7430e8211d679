package narrative

import (
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

// ErrMalformedPayload is returned by Parse when the provider output holds no JSON object.
var ErrMalformedPayload = errors.New("payload is not a JSON object")

// Parse extracts a Response from raw provider output. Code fences and text
// around the outermost object are ignored. Missing or invalid fields are
// replaced so the result always satisfies the Response invariant.
func Parse(raw string) (Response, error) {
	body := extractObject(raw)
	if body == "" || !gjson.Valid(body) {
		return Response{}, ErrMalformedPayload
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return Response{}, ErrMalformedPayload
	}

	resp := Response{
		Story:   parseStory(doc.Get("story")),
		Choices: parseChoices(doc.Get("choices")),
		Enemy:   parseEnemy(doc.Get("enemy")),
		Items:   parseItems(doc.Get("items")),
	}
	return resp, nil
}

func extractObject(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func parseStory(v gjson.Result) string {
	if v.Type != gjson.String {
		return FallbackStory
	}
	if s := strings.TrimSpace(v.Str); s != "" {
		return s
	}
	return FallbackStory
}

// parseChoices returns exactly choiceCount entries. Anything other than an
// array of non-empty strings yields GenericChoices.
func parseChoices(v gjson.Result) []string {
	if !v.IsArray() {
		return slices.Clone(GenericChoices)
	}
	var out []string
	for _, c := range v.Array() {
		s := strings.TrimSpace(c.Str)
		if c.Type != gjson.String || s == "" {
			return slices.Clone(GenericChoices)
		}
		out = append(out, s)
	}
	return padChoices(out)
}

func padChoices(in []string) []string {
	if len(in) > choiceCount {
		return in[:choiceCount]
	}
	out := slices.Clone(in)
	for _, g := range GenericChoices {
		if len(out) == choiceCount {
			break
		}
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

func parseEnemy(v gjson.Result) *combat.Enemy {
	if !v.IsObject() {
		return nil
	}
	name := strings.TrimSpace(v.Get("name").String())
	health := int(v.Get("health").Int())
	if name == "" || health <= 0 {
		return nil
	}
	e := &combat.Enemy{
		ID:        "enemy_" + uuid.NewString(),
		Name:      name,
		Health:    health,
		MaxHealth: int(v.Get("maxHealth").Int()),
		Attack:    int(v.Get("attack").Int()),
		Defense:   int(v.Get("defense").Int()),
	}
	if e.MaxHealth < e.Health {
		e.MaxHealth = e.Health
	}
	e.Attack = e.EffectiveAttack()
	if e.Defense < 0 {
		e.Defense = 0
	}
	return e
}

func parseItems(v gjson.Result) []inventory.Item {
	if !v.IsArray() {
		return nil
	}
	var out []inventory.Item
	for _, raw := range v.Array() {
		id := strings.TrimSpace(raw.Get("id").String())
		name := strings.TrimSpace(raw.Get("name").String())
		if id == "" || name == "" {
			continue
		}
		category := raw.Get("type").String()
		if category == "" {
			category = raw.Get("category").String()
		}
		qty := int(raw.Get("quantity").Int())
		if qty < 1 {
			qty = 1
		}
		out = append(out, inventory.Item{
			ID:       id,
			Name:     name,
			Category: inventory.CoerceCategory(category),
			Effect:   strings.TrimSpace(raw.Get("effect").String()),
			Quantity: qty,
		})
	}
	return out
}
