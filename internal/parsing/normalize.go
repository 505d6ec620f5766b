// Package parsing splits free-text form fields into normalized item lists.
package parsing

import (
	"regexp"
	"strings"
)

// Symbols are the bullet and dash characters users and models put in front of list items.
const Symbols = "*-•●‣▪"

var (
	itemSeparator = regexp.MustCompile(`,|\n`)
	lineSeparator = regexp.MustCompile(`\r\n|\n|\r`)
)

// StripSymbols removes leading and trailing bullet symbols and whitespace.
func StripSymbols(s string) string {
	s = strings.TrimLeft(s, Symbols+" \t\r\n\f\v")
	s = strings.TrimRight(s, Symbols)
	return strings.TrimSpace(s)
}

// NormalizeList splits raw on commas or newlines and returns the lowercase,
// symbol-stripped items with empty entries dropped and duplicates removed.
// The first occurrence of an item keeps its position.
func NormalizeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	pieces := itemSeparator.Split(raw, -1)
	items := make([]string, 0, len(pieces))
	seen := make(map[string]struct{}, len(pieces))

	for _, piece := range pieces {
		item := strings.ToLower(StripSymbols(piece))
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}

	return items
}

// SplitLines splits raw into symbol-stripped, non-empty lines. Case and
// duplicates are preserved.
func SplitLines(raw string) []string {
	lines := make([]string, 0)
	for _, line := range lineSeparator.Split(raw, -1) {
		if line = StripSymbols(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
