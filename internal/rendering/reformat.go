package rendering

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/parsing"
)

var (
	tagPattern          = regexp.MustCompile(`<[^>]*>`)
	headingOpenPattern  = regexp.MustCompile(`(?i)^<h[1-6](?:\s|>)`)
	headingClosePattern = regexp.MustCompile(`(?i)^</h[1-6]\s*>`)
	inlineSkillsPattern = regexp.MustCompile(`(?is)^skills\s*:\s*(.+)$`)
	wrappedHeading      = regexp.MustCompile(`(?is)<(?:p|strong|b|span|div|em)(?:\s[^>]*)?>\s*(<h3>[^<]*</h3>(?:<ul>.*?</ul>)?)\s*</(?:p|strong|b|span|div|em)>`)
)

// sectionWords maps a bare section word to its canonical heading.
var sectionWords = map[string]string{
	"summary":              "Professional Summary",
	"professional summary": "Professional Summary",
	"experience":           "Experience",
	"education":            "Education",
	"skills":               "Skills",
}

// Reformat turns bare section words in model output into <h3> headings and an
// inline "Skills: a, b" list into a deduplicated <ul>. A text node counts as
// bare when it holds only the word, optionally followed by a colon; text
// already inside a heading is left alone.
func Reformat(content string) string {
	var sb strings.Builder
	depth := 0
	last := 0

	for _, loc := range tagPattern.FindAllStringIndex(content, -1) {
		sb.WriteString(rewriteText(content[last:loc[0]], depth))

		tag := content[loc[0]:loc[1]]
		switch {
		case headingOpenPattern.MatchString(tag):
			depth++
		case headingClosePattern.MatchString(tag) && depth > 0:
			depth--
		}
		sb.WriteString(tag)
		last = loc[1]
	}
	sb.WriteString(rewriteText(content[last:], depth))

	return unwrapHeadings(sb.String())
}

func rewriteText(text string, headingDepth int) string {
	if headingDepth > 0 {
		return text
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}

	if m := inlineSkillsPattern.FindStringSubmatch(trimmed); m != nil {
		items := parsing.NormalizeList(html.UnescapeString(m[1]))
		return "<h3>Skills</h3>" + extract.List(items)
	}

	word := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(trimmed, ":")))
	if heading, ok := sectionWords[word]; ok {
		return "<h3>" + heading + "</h3>"
	}
	return text
}

// unwrapHeadings lifts headings out of inline or paragraph wrappers that held
// only the section word.
func unwrapHeadings(content string) string {
	for i := 0; i < 4; i++ {
		next := wrappedHeading.ReplaceAllString(content, "${1}")
		if next == content {
			break
		}
		content = next
	}
	return content
}
