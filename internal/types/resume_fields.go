// Package types provides the data types shared by the resume builder packages.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownField is returned when a field name is not one of the form fields.
var ErrUnknownField = errors.New("unknown resume field")

// Field names as they appear in the form and in the persisted JSON document.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldLinkedIn   = "linkedin"
	FieldLocation   = "location"
	FieldLanguages  = "languages"
	FieldSummary    = "summary"
	FieldExperience = "experience"
	FieldEducation  = "education"
	FieldSkills     = "skills"
	FieldJobDesc    = "jobdesc"
)

// ResumeFields is the flat record of free-text fields captured by the form.
// Every field is optional; an absent field is the empty string.
type ResumeFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	LinkedIn   string `json:"linkedin"`
	Location   string `json:"location"`
	Languages  string `json:"languages"`
	Summary    string `json:"summary"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Skills     string `json:"skills"`
	JobDesc    string `json:"jobdesc"`
}

// FieldNames returns the field names in form order.
func FieldNames() []string {
	return []string{
		FieldName, FieldEmail, FieldPhone, FieldLinkedIn, FieldLocation, FieldLanguages,
		FieldSummary, FieldExperience, FieldEducation, FieldSkills, FieldJobDesc,
	}
}

func (f *ResumeFields) ref(name string) (*string, error) {
	switch name {
	case FieldName:
		return &f.Name, nil
	case FieldEmail:
		return &f.Email, nil
	case FieldPhone:
		return &f.Phone, nil
	case FieldLinkedIn:
		return &f.LinkedIn, nil
	case FieldLocation:
		return &f.Location, nil
	case FieldLanguages:
		return &f.Languages, nil
	case FieldSummary:
		return &f.Summary, nil
	case FieldExperience:
		return &f.Experience, nil
	case FieldEducation:
		return &f.Education, nil
	case FieldSkills:
		return &f.Skills, nil
	case FieldJobDesc:
		return &f.JobDesc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// Get returns the value of the named field.
func (f ResumeFields) Get(name string) (string, error) {
	p, err := f.ref(name)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set overwrites the value of the named field.
func (f *ResumeFields) Set(name, value string) error {
	p, err := f.ref(name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// TemplateChoice identifies the active visual layout.
type TemplateChoice int

// Template choices offered by the form.
const (
	Template1 TemplateChoice = iota
	Template2
	Template3
)

// TemplateCount is the number of selectable templates.
const TemplateCount = 3

// ParseTemplateChoice parses a stored template index. Empty, malformed or
// out-of-range values select the first template.
func ParseTemplateChoice(s string) TemplateChoice {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Template1
	}
	c := TemplateChoice(n)
	if !c.Valid() {
		return Template1
	}
	return c
}

// Valid reports whether the choice is one of the selectable templates.
func (c TemplateChoice) Valid() bool {
	return c >= 0 && int(c) < TemplateCount
}

// String returns the stored form of the choice.
func (c TemplateChoice) String() string {
	return strconv.Itoa(int(c))
}

// CSSClass returns the wrapper class of the template ("template1" for index 0).
func (c TemplateChoice) CSSClass() string {
	return "template" + strconv.Itoa(int(c)+1)
}
