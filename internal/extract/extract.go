// Package extract locates named resume sections inside sanitized HTML and
// synthesizes replacements from raw form text when a section is missing.
package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-builder/internal/parsing"
)

// SectionSpec names a section and the header texts that identify it.
type SectionSpec struct {
	Name    string
	Headers []string
}

// Known sections.
var (
	Experience = SectionSpec{
		Name:    "Experience",
		Headers: []string{"Experience", "Work Experience", "Professional Experience"},
	}
	Education = SectionSpec{
		Name:    "Education",
		Headers: []string{"Education"},
	}
	Achievements = SectionSpec{
		Name:    "Achievements",
		Headers: []string{"Achievements", "Projects", "Achievements and Key Projects"},
	}
	Skills = SectionSpec{
		Name:    "Skills",
		Headers: []string{"Skills", "Technical Skills"},
	}
)

// Specs returns the known sections in resume order.
func Specs() []SectionSpec {
	return []SectionSpec{Experience, Education, Achievements, Skills}
}

// Section is a located or synthesized HTML fragment. Body excludes the header.
type Section struct {
	Name   string
	Header string
	Body   string
	FromAI bool
}

// Empty reports whether the section has no content.
func (s Section) Empty() bool {
	return strings.TrimSpace(s.Body) == ""
}

// ExtractSection finds the first <h2> or <h3> whose text matches one of
// headers (case-insensitive) and returns everything after it up to the next
// heading tag or the end of the content.
func ExtractSection(sanitized string, headers ...string) (Section, bool) {
	re := sectionPattern(headers)
	if re == nil {
		return Section{}, false
	}

	m := re.FindStringSubmatchIndex(sanitized)
	if m == nil {
		return Section{}, false
	}

	return Section{
		Header: strings.TrimSpace(sanitized[m[2]:m[3]]),
		Body:   sanitized[m[4]:m[5]],
		FromAI: true,
	}, true
}

// RemoveSection deletes the first section matching headers, header included.
// Content without a match is returned unchanged.
func RemoveSection(sanitized string, headers ...string) string {
	re := sectionPattern(headers)
	if re == nil {
		return sanitized
	}

	m := re.FindStringSubmatchIndex(sanitized)
	if m == nil {
		return sanitized
	}

	return sanitized[:m[0]] + sanitized[m[5]:]
}

// Synthesize builds a list fragment from raw form text, one item per line.
func Synthesize(spec SectionSpec, raw string) Section {
	lines := parsing.SplitLines(raw)
	if len(lines) == 0 {
		return Section{Name: spec.Name, Header: spec.Name}
	}
	return Section{Name: spec.Name, Header: spec.Name, Body: List(lines)}
}

// Resolve extracts the section from sanitized content and falls back to the
// raw form text when the content has no such section or the section is empty.
func Resolve(sanitized string, spec SectionSpec, raw string) Section {
	if s, ok := ExtractSection(sanitized, spec.Headers...); ok && !s.Empty() {
		s.Name = spec.Name
		return s
	}
	return Synthesize(spec, raw)
}

// List renders items as an escaped <ul>.
func List(items []string) string {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, item := range items {
		sb.WriteString("<li>")
		sb.WriteString(html.EscapeString(item))
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul>")
	return sb.String()
}

// HasStructure reports whether the content contains any h2, h3, ul or ol element.
func HasStructure(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return false
	}
	return doc.Find("h2, h3, ul, ol").Length() > 0
}

// sectionPattern matches a heading with one of headers, capturing the header
// text (group 1) and the body (group 2).
func sectionPattern(headers []string) *regexp.Regexp {
	quoted := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			quoted = append(quoted, regexp.QuoteMeta(h))
		}
	}
	if len(quoted) == 0 {
		return nil
	}

	return regexp.MustCompile(`(?is)<h[23](?:\s[^>]*)?>\s*(` + strings.Join(quoted, "|") +
		`)\s*:?\s*</h[23]>(.*?)(?:<h[1-6](?:\s|>|/)|$)`)
}
