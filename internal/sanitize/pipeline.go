// Package sanitize cleans generated resume HTML with an ordered pipeline of
// text transformations. The input is untrusted model output, so every step is
// best-effort and total: a step never fails, it only rewrites what it matches.
package sanitize

// Step is a single named transformation.
type Step struct {
	Name  string
	Apply func(string) string
}

// Pipeline runs its steps in order, feeding each step the previous output.
type Pipeline []Step

// TraceEntry records the output of one step.
type TraceEntry struct {
	Step   string
	Output string
}

// DefaultPipeline returns the sanitization steps in the order they must run.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Name: "strip_code_fences", Apply: StripCodeFences},
		{Name: "strip_document_tags", Apply: StripDocumentTags},
		{Name: "collapse_bullet_markers", Apply: CollapseBulletMarkers},
		{Name: "drop_keyword_tags", Apply: DropKeywordTags},
		{Name: "drop_keyword_lines", Apply: DropKeywordLines},
		{Name: "dedupe_headers", Apply: DedupeHeaders},
		{Name: "dedupe_lines", Apply: DedupeLines},
	}
}

// Run applies every step to s.
func (p Pipeline) Run(s string) string {
	for _, step := range p {
		s = step.Apply(s)
	}
	return s
}

// RunTrace applies every step to s and also returns each intermediate result.
func (p Pipeline) RunTrace(s string) (string, []TraceEntry) {
	trace := make([]TraceEntry, 0, len(p))
	for _, step := range p {
		s = step.Apply(s)
		trace = append(trace, TraceEntry{Step: step.Name, Output: s})
	}
	return s, trace
}

// Sanitize runs the default pipeline over a raw model response.
func Sanitize(raw string) string {
	return DefaultPipeline().Run(raw)
}
