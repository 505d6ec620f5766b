package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/sanitize"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFields(types.ResumeFields{
		Name:   "Jane Doe",
		Skills: "Go, go, SQL\nDocker, K8s, Rust, Python",
	}, types.Template2)
	output := buf.String()

	assert.Contains(t, output, "RESUME FIELDS")
	assert.Contains(t, output, "Template: 1 (template2)")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "email:      -")
	assert.Contains(t, output, "• go")
	assert.Contains(t, output, "... and 1 more")
}

func TestPrintFields_LongValuesTruncated(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFields(types.ResumeFields{Summary: strings.Repeat("x", 200)}, types.Template1)

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintTrace(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	_, trace := sanitize.DefaultPipeline().RunTrace("```html\n<h3>Skills</h3>\n```")
	p.PrintTrace(trace)
	output := buf.String()

	assert.Contains(t, output, "STEP 1: strip_code_fences")
	assert.Contains(t, output, "STEP 7: dedupe_lines")
}

func TestPrintTrace_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintTrace(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSections("<h3>Work Experience</h3><ul><li>Acme</li></ul><h3>Skills</h3>", "exhaustive")
	output := buf.String()

	assert.Contains(t, output, "Layout: exhaustive")
	assert.Contains(t, output, `✓ Experience (header "Work Experience")`)
	assert.Contains(t, output, "✗ Education")
	assert.Contains(t, output, "○ Skills")
}
