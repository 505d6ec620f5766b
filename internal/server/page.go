package server

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formField describes one input of the form page
type formField struct {
	Name      string
	Label     string
	Multiline bool
	Value     string
}

// templateOption describes one template radio button
type templateOption struct {
	Index   int
	Label   string
	Checked bool
}

// indexData is the data rendered into the form page
type indexData struct {
	Fields      []formField
	Templates   []templateOption
	Preview     template.HTML
	HasAPIKey   bool
	Generating  string
	ExportTypes []string
}

var fieldLabels = map[string]string{
	types.FieldName:       "Full Name",
	types.FieldEmail:      "Email",
	types.FieldPhone:      "Phone",
	types.FieldLinkedIn:   "LinkedIn",
	types.FieldLocation:   "Location",
	types.FieldLanguages:  "Languages",
	types.FieldSummary:    "Professional Summary",
	types.FieldExperience: "Experience",
	types.FieldEducation:  "Education",
	types.FieldSkills:     "Skills",
	types.FieldJobDesc:    "Job Description",
}

var multilineFields = map[string]bool{
	types.FieldSummary:    true,
	types.FieldExperience: true,
	types.FieldEducation:  true,
	types.FieldSkills:     true,
	types.FieldJobDesc:    true,
}

var templateLabels = []string{"Exhaustive", "AI-Driven", "Modern"}

// newIndexData builds the page data from a restored state
func newIndexData(state preview.State) indexData {
	data := indexData{
		// Live preview markup escapes every user value.
		Preview:     template.HTML(state.Preview), //nolint:gosec // built from escaped field values
		HasAPIKey:   state.HasAPIKey,
		Generating:  preview.GeneratingMarkup,
		ExportTypes: []string{preview.FormatPDF, preview.FormatDOCX, preview.FormatHTML},
	}

	for _, name := range types.FieldNames() {
		value, _ := state.Fields.Get(name)
		data.Fields = append(data.Fields, formField{
			Name:      name,
			Label:     fieldLabels[name],
			Multiline: multilineFields[name],
			Value:     value,
		})
	}

	for i := 0; i < types.TemplateCount; i++ {
		data.Templates = append(data.Templates, templateOption{
			Index:   i,
			Label:   templateLabels[i],
			Checked: types.TemplateChoice(i) == state.Template,
		})
	}
	return data
}

// handleIndex serves the form page with the restored state
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	state, err := ctrl.Restore(r.Context())
	if err != nil {
		// A corrupt saved document should not lock the user out of the form.
		log.Printf("[store] failed to restore form state: %v", err)
		state = preview.State{}
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, newIndexData(state)); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to render page")
		log.Printf("Error rendering index page: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing index page: %v", err)
	}
}
