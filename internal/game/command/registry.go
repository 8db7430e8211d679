package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknown is returned for a word that names no command.
var ErrUnknown = errors.New("unknown command")

// Registry maps command names and aliases to commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates a Registry of cmds.
//
// Precondition: no two commands may share a name or alias.
// Postcondition: returns a Registry or an error naming the collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if _, ok := r.commands[cmd.Name]; ok {
			return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
		}
		if _, ok := r.aliases[cmd.Name]; ok {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", cmd.Name)
		}
		r.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			if _, ok := r.commands[alias]; ok {
				return nil, fmt.Errorf("alias %q conflicts with a command name", alias)
			}
			if owner, ok := r.aliases[alias]; ok {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, owner, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

// DefaultRegistry returns a Registry of BuiltinCommands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(word string) (*Command, bool) {
	if cmd, ok := r.commands[word]; ok {
		return cmd, true
	}
	if name, ok := r.aliases[word]; ok {
		return r.commands[name], true
	}
	return nil, false
}

// Lookup parses line and resolves its command, checking the argument count.
// A bare number is shorthand for choose.
//
// Postcondition: on success the returned Command is registered.
func (r *Registry) Lookup(line string) (*Command, ParseResult, error) {
	p := Parse(line)
	if p.Command == "" {
		return nil, p, nil
	}
	if isChoiceNumber(p.Command) {
		p = ParseResult{Command: "choose", Args: []string{p.Command}, RawArgs: p.Command}
	}
	cmd, ok := r.Resolve(p.Command)
	if !ok {
		return nil, p, fmt.Errorf("%w %q", ErrUnknown, p.Command)
	}
	if len(p.Args) < cmd.MinArgs {
		return nil, p, fmt.Errorf("usage: %s %s", cmd.Name, cmd.Usage)
	}
	return cmd, p, nil
}

func isChoiceNumber(s string) bool {
	return len(s) == 1 && s[0] >= '1' && s[0] <= '9'
}

// Help renders every command grouped by category, names sorted.
func (r *Registry) Help() string {
	order := []string{CategoryStory, CategoryCombat, CategoryPlayer, CategorySaves, CategorySystem}
	byCat := r.CommandsByCategory()
	var b strings.Builder
	for _, cat := range order {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, c := range cmds {
			sig := strings.TrimSpace(c.Name + " " + c.Usage)
			fmt.Fprintf(&b, "  %-28s %s\n", sig, c.Help)
		}
	}
	return b.String()
}

// Commands returns all registered commands in no particular order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	return out
}

// CommandsByCategory returns commands grouped by category.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.commands {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}
