package sanitize

import (
	"regexp"
	"strings"
)

var (
	codeFencePattern    = regexp.MustCompile("(?i)```html|```")
	documentTagPattern  = regexp.MustCompile(`(?i)</?(?:html|body|head)\b[^>]*>`)
	bulletMarkerPattern = regexp.MustCompile(`[\n\r]?\s*[*\-•●‣▪]\s?`)
	anyTagPattern       = regexp.MustCompile(`<[^>]*>?`)
	keywordLinePattern  = regexp.MustCompile(`(?i)keywords:[^\n]*(?:\n|$)`)
	h3Pattern           = regexp.MustCompile(`(?i)<h3>([^<]+)</h3>`)
	lineBreakPattern    = regexp.MustCompile(`(?i)<br\s*/?>|\r\n|\n|\r`)
	markupOnlyPattern   = regexp.MustCompile(`^(?:\s*<[^>]*>)+\s*$`)
)

// StripCodeFences removes markdown code fence markers, with or without an html tag.
func StripCodeFences(s string) string {
	return codeFencePattern.ReplaceAllString(s, "")
}

// StripDocumentTags removes <html>, <body> and <head> open and close tags,
// keeping whatever they wrapped.
func StripDocumentTags(s string) string {
	return documentTagPattern.ReplaceAllString(s, "")
}

// CollapseBulletMarkers replaces a bullet or dash character, together with any
// whitespace or line break in front of it, by a single space.
func CollapseBulletMarkers(s string) string {
	return bulletMarkerPattern.ReplaceAllString(s, " ")
}

// DropKeywordTags blanks any tag whose markup mentions "keywords". Text
// between tags is left untouched.
func DropKeywordTags(s string) string {
	return anyTagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		if strings.Contains(strings.ToLower(tag), "keywords") {
			return ""
		}
		return tag
	})
}

// DropKeywordLines removes "Keywords:" through the end of its line.
func DropKeywordLines(s string) string {
	return keywordLinePattern.ReplaceAllString(s, "")
}

// DedupeHeaders keeps the first <h3> for each header text and removes later
// ones. Header text is compared case-insensitively.
func DedupeHeaders(s string) string {
	seen := make(map[string]struct{})
	return h3Pattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := h3Pattern.FindStringSubmatch(match)
		key := strings.ToLower(strings.TrimSpace(sub[1]))
		if _, dup := seen[key]; dup {
			return ""
		}
		seen[key] = struct{}{}
		return match
	})
}

// DedupeLines splits s on <br> tags and line breaks, drops blank lines and
// lines that repeat an earlier line case-insensitively, and joins the rest
// with newlines. Lines made only of markup, such as "</ul>", are always kept.
func DedupeLines(s string) string {
	lines := lineBreakPattern.Split(s, -1)
	kept := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if markupOnlyPattern.MatchString(trimmed) {
			kept = append(kept, line)
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
