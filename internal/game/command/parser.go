package command

import "strings"

// ParseResult is one parsed input line.
type ParseResult struct {
	// Command is the first word, lowercased.
	Command string
	// Args are the remaining words.
	Args []string
	// RawArgs is the text after the command with inner spacing kept, for
	// free-form actions.
	RawArgs string
}

// Parse splits line into a command word and its arguments.
//
// Postcondition: an empty or blank line yields an empty Command.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	word, rest, found := strings.Cut(line, " ")
	if !found {
		return ParseResult{Command: strings.ToLower(word)}
	}
	rest = strings.TrimSpace(rest)
	return ParseResult{
		Command: strings.ToLower(word),
		Args:    strings.Fields(rest),
		RawArgs: rest,
	}
}
