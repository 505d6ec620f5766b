// Package rendering composes resume markup for the selectable templates.
package rendering

import (
	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/types"
)

// Kind is the layout actually used for a render.
type Kind int

// Layout kinds.
const (
	// KindExhaustive is the two-column layout that shows every populated field.
	KindExhaustive Kind = iota
	// KindAIDriven is the two-column layout whose main column is the model output.
	KindAIDriven
	// KindFallback is the single-column layout built only from form fields.
	KindFallback
	// KindGeneric reformats model output in place.
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindExhaustive:
		return "exhaustive"
	case KindAIDriven:
		return "ai_driven"
	case KindFallback:
		return "fallback"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// SelectKind picks the layout for sanitized content and a template choice.
// Content without any h2, h3, ul or ol element always uses the fallback
// layout; otherwise the first two templates map to the two-column layouts and
// any other choice reformats the content in place.
func SelectKind(sanitized string, choice types.TemplateChoice) Kind {
	if !extract.HasStructure(sanitized) {
		return KindFallback
	}
	switch choice {
	case types.Template1:
		return KindExhaustive
	case types.Template2:
		return KindAIDriven
	default:
		return KindGeneric
	}
}
