// Package observability provides formatted CLI output and service metrics.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/sanitize"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintFields outputs the saved form fields, one per line.
func (p *Printer) PrintFields(fields types.ResumeFields, choice types.TemplateChoice) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template: %d (%s)\n\n", int(choice), choice.CSSClass()))

	for _, name := range types.FieldNames() {
		value, _ := fields.Get(name)
		value = strings.Join(strings.Fields(value), " ")
		if value == "" {
			value = "-"
		}
		sb.WriteString(fmt.Sprintf("%-11s %s\n", name+":", value))
	}

	skills := parsing.NormalizeList(fields.Skills)
	if len(skills) > 0 {
		sb.WriteString("\nNormalized skills:\n")
		count := min(len(skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", skills[i]))
		}
		if len(skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
		}
	}

	p.printBox("RESUME FIELDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTrace outputs the intermediate result of every sanitize step.
func (p *Printer) PrintTrace(entries []sanitize.TraceEntry) {
	if len(entries) == 0 {
		return
	}

	for i, entry := range entries {
		out := entry.Output
		if strings.TrimSpace(out) == "" {
			out = "(empty)"
		}
		p.printBox(fmt.Sprintf("STEP %d: %s (%d bytes)", i+1, entry.Step, len(entry.Output)), out)
	}
}

// PrintSections outputs which canonical sections the AI content provides.
func (p *Printer) PrintSections(sanitized string, kind string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Layout: %s\n\n", kind))

	for _, spec := range extract.Specs() {
		section, ok := extract.ExtractSection(sanitized, spec.Headers...)
		switch {
		case !ok:
			sb.WriteString(fmt.Sprintf("✗ %s\n", spec.Name))
		case section.Empty():
			sb.WriteString(fmt.Sprintf("○ %s (header %q, empty)\n", spec.Name, section.Header))
		default:
			sb.WriteString(fmt.Sprintf("✓ %s (header %q)\n", spec.Name, section.Header))
		}
	}

	p.printBox("AI SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}
