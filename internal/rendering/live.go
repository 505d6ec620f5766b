package rendering

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// LivePreview renders the fixed-structure preview shown while the user types.
// It uses the raw field values only, so it works without network access.
func LivePreview(f types.ResumeFields) string {
	var sb strings.Builder
	sb.WriteString("<h2>" + displayName(f.Name) + "</h2>")
	sb.WriteString(contactLine(f))
	for _, s := range []struct{ heading, text string }{
		{"Professional Summary", f.Summary},
		{"Experience", f.Experience},
		{"Education", f.Education},
		{"Skills", f.Skills},
	} {
		sb.WriteString("<h3>" + s.heading + "</h3><p>" + escapeMultiline(s.text) + "</p>")
	}
	return sb.String()
}
