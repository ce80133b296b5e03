package chatinput

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/slashcmd/internal/catalog"
)

// ItemKind classifies a completion item.
type ItemKind string

const (
	ItemCommand  ItemKind = "command"
	ItemAgent    ItemKind = "agent"
	ItemVariable ItemKind = "variable"
)

// Item is one completion candidate. Insert replaces Range in the input.
type Item struct {
	Kind   ItemKind `json:"kind"`
	Label  string   `json:"label"`
	Insert string   `json:"insert"`
	Detail string   `json:"detail,omitempty"`
	Range  Range    `json:"range"`
}

// Complete returns candidates for the word ending at cursor. Commands come
// from cat in yield order; a nil cat yields no command or agent items.
// Variables are matched case-insensitively by prefix.
func Complete(text string, cursor int, cat *catalog.Catalog, vars []string) []Item {
	cursor = runeBoundary(text, max(0, min(cursor, len(text))))
	start := wordStart(text, cursor)
	word := text[start:cursor]
	if word == "" {
		return nil
	}
	replace := Range{Start: start, End: cursor}

	switch word[0] {
	case '/':
		if cat == nil {
			return nil
		}
		agent, ok := slashPosition(text[:start])
		if !ok {
			return nil
		}
		var items []Item
		for _, d := range matchCommands(cat, agent, word[1:]) {
			items = append(items, Item{
				Kind:   ItemCommand,
				Label:  "/" + d.Name,
				Insert: "/" + d.Name + " ",
				Detail: d.Description,
				Range:  replace,
			})
		}
		return items

	case '@':
		if cat == nil || strings.TrimSpace(text[:start]) != "" {
			return nil
		}
		prefix := strings.ToLower(word[1:])
		var items []Item
		for _, a := range cat.Agents() {
			if strings.HasPrefix(strings.ToLower(a), prefix) {
				items = append(items, Item{
					Kind:   ItemAgent,
					Label:  "@" + a,
					Insert: "@" + a + " ",
					Detail: "agent",
					Range:  replace,
				})
			}
		}
		return items

	case '#':
		prefix := strings.ToLower(word[1:])
		var items []Item
		for _, v := range vars {
			if strings.HasPrefix(strings.ToLower(v), prefix) {
				items = append(items, Item{
					Kind:   ItemVariable,
					Label:  "#" + v,
					Insert: "#" + v + " ",
					Range:  replace,
				})
			}
		}
		return items
	}

	return nil
}

// wordStart scans back from cursor to the first rune after whitespace. A
// cursor inside a multi-byte rune is first moved back to the rune boundary.
func wordStart(text string, cursor int) int {
	i := runeBoundary(text, cursor)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	return i
}

// runeBoundary returns the largest rune start at or before offset.
func runeBoundary(text string, offset int) int {
	for offset > 0 && offset < len(text) && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}

// matchCommands returns the commands available to agent whose name starts
// with prefix. With no agent every command is offered.
func matchCommands(cat *catalog.Catalog, agent, prefix string) []catalog.Definition {
	if agent == "" {
		return cat.Match(prefix)
	}
	prefix = strings.ToLower(prefix)
	var out []catalog.Definition
	for _, d := range cat.ForAgent(agent) {
		if strings.HasPrefix(strings.ToLower(d.Name), prefix) {
			out = append(out, d)
		}
	}
	return out
}

// slashPosition reports whether a slash command may start after before, and
// the agent that precedes it, if any.
func slashPosition(before string) (agent string, ok bool) {
	trimmed := strings.TrimSpace(before)
	if trimmed == "" {
		return "", true
	}
	if m := agentRe.FindStringSubmatch(before); m != nil && strings.TrimSpace(before[len(m[0]):]) == "" {
		return m[2], true
	}
	return "", false
}
