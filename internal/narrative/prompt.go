package narrative

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/save"
)

//go:embed prompts/*.tmpl prompts/genres.yaml
var promptFS embed.FS

// Prompt is a rendered provider request.
type Prompt struct {
	System string
	User   string
}

// PromptBuilder renders Requests into Prompts.
type PromptBuilder struct {
	system   *template.Template
	user     *template.Template
	personas map[string]string
}

// NewPromptBuilder parses the embedded templates and genre personas.
//
// Postcondition: every genre in save.Genres has a persona, or an error is returned.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}
	raw, err := promptFS.ReadFile("prompts/genres.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading genre personas: %w", err)
	}
	personas := make(map[string]string)
	if err := yaml.Unmarshal(raw, &personas); err != nil {
		return nil, fmt.Errorf("parsing genre personas: %w", err)
	}
	for _, g := range save.Genres {
		if personas[string(g)] == "" {
			return nil, fmt.Errorf("genre %q has no persona", g)
		}
	}
	return &PromptBuilder{
		system:   tmpl.Lookup("system.tmpl"),
		user:     tmpl.Lookup("user.tmpl"),
		personas: personas,
	}, nil
}

// Persona returns the system persona for genre, falling back to fantasy.
func (b *PromptBuilder) Persona(genre string) string {
	if p, ok := b.personas[genre]; ok {
		return p
	}
	return b.personas[string(save.GenreFantasy)]
}

// Build renders req.
//
// Precondition: req has been normalized.
func (b *PromptBuilder) Build(req Request) (Prompt, error) {
	data := struct {
		Persona string
		Player  character.Character
		Choice  string
		Context string
	}{
		Persona: b.Persona(req.Genre),
		Player:  req.Player,
		Choice:  req.Choice,
		Context: req.context(),
	}
	var sys, usr bytes.Buffer
	if err := b.system.Execute(&sys, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering system prompt: %w", err)
	}
	if err := b.user.Execute(&usr, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering user prompt: %w", err)
	}
	return Prompt{System: sys.String(), User: usr.String()}, nil
}
