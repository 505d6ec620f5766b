package rendering

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/types"
)

// Render composes the final resume markup for a template. It never fails:
// content the layouts cannot use degrades to the fallback layout.
func Render(fields types.ResumeFields, sanitized string, choice types.TemplateChoice) string {
	out, _ := RenderKind(fields, sanitized, choice)
	return out
}

// RenderKind is Render that also reports the layout it used.
func RenderKind(fields types.ResumeFields, sanitized string, choice types.TemplateChoice) (string, Kind) {
	if !choice.Valid() {
		choice = types.Template1
	}

	kind := SelectKind(sanitized, choice)
	switch kind {
	case KindExhaustive:
		return renderExhaustive(fields, sanitized, choice), kind
	case KindAIDriven:
		return renderAIDriven(fields, sanitized, choice), kind
	case KindGeneric:
		return wrap(choice, Reformat(sanitized)), kind
	default:
		return renderFallback(fields, choice), KindFallback
	}
}

func renderExhaustive(f types.ResumeFields, sanitized string, choice types.TemplateChoice) string {
	side := sidebar(f, sidebarOptions{languagesAsList: true, skillsAsList: true})

	var main strings.Builder
	if s := strings.TrimSpace(f.Summary); s != "" {
		main.WriteString("<h3>Summary</h3><p>" + escapeMultiline(s) + "</p>")
	}
	if exp := extract.Resolve(sanitized, extract.Experience, f.Experience); !exp.Empty() {
		main.WriteString("<h3>Work Experience</h3>" + exp.Body)
	}
	if edu := extract.Resolve(sanitized, extract.Education, f.Education); !edu.Empty() {
		main.WriteString("<h3>Education</h3>" + edu.Body)
	}
	if ach, ok := extract.ExtractSection(sanitized, extract.Achievements.Headers...); ok && !ach.Empty() {
		main.WriteString("<h3>Achievements</h3>" + ach.Body)
	}
	if jd := strings.TrimSpace(f.JobDesc); jd != "" {
		main.WriteString("<h3>Job Description</h3><p>" + escapeMultiline(jd) + "</p>")
	}

	return twoColumn(choice, side, main.String())
}

func renderAIDriven(f types.ResumeFields, sanitized string, choice types.TemplateChoice) string {
	side := sidebar(f, sidebarOptions{})
	return twoColumn(choice, side, removeAllSections(sanitized, extract.Skills.Headers...))
}

func renderFallback(f types.ResumeFields, choice types.TemplateChoice) string {
	var sb strings.Builder
	sb.WriteString("<h2>" + displayName(f.Name) + "</h2>")
	sb.WriteString(contactLine(f))
	sb.WriteString("<h3>Professional Summary</h3><p>" + escapeMultiline(f.Summary) + "</p>")
	sb.WriteString("<h3>Experience</h3>" + extract.List(parsing.SplitLines(f.Experience)))
	sb.WriteString("<h3>Education</h3><p>" + escapeMultiline(f.Education) + "</p>")
	sb.WriteString("<h3>Skills</h3>" + extract.List(parsing.NormalizeList(f.Skills)))
	return wrap(choice, sb.String())
}

type sidebarOptions struct {
	languagesAsList bool
	skillsAsList    bool
}

func sidebar(f types.ResumeFields, opts sidebarOptions) string {
	var sb strings.Builder
	sb.WriteString("<h2>" + displayName(f.Name) + "</h2>")

	var contact []string
	for _, v := range []string{f.Email, f.Phone, f.LinkedIn} {
		if v = strings.TrimSpace(v); v != "" {
			contact = append(contact, v)
		}
	}
	if len(contact) > 0 {
		sb.WriteString(labeled("Contact", extract.List(contact)))
	}

	if loc := strings.TrimSpace(f.Location); loc != "" {
		sb.WriteString(labeled("Location", "<div>"+escape(loc)+"</div>"))
	}

	if langs := strings.TrimSpace(f.Languages); langs != "" {
		if opts.languagesAsList {
			if items := parsing.NormalizeList(langs); len(items) > 0 {
				sb.WriteString(labeled("Languages", extract.List(items)))
			}
		} else {
			sb.WriteString(labeled("Languages", "<div>"+escape(langs)+"</div>"))
		}
	}

	if skills := parsing.NormalizeList(f.Skills); len(skills) > 0 {
		if opts.skillsAsList {
			sb.WriteString(labeled("Skills", extract.List(skills)))
		} else {
			sb.WriteString(labeled("Skills", "<div>"+escape(strings.Join(skills, ", "))+"</div>"))
		}
	}

	return sb.String()
}

func labeled(label, body string) string {
	return `<section><span class="label">` + label + `</span>` + body + `</section>`
}

func contactLine(f types.ResumeFields) string {
	return "<p><strong>Email:</strong> " + escape(f.Email) +
		" | <strong>Phone:</strong> " + escape(f.Phone) +
		" | <strong>LinkedIn:</strong> " + escape(f.LinkedIn) + "</p>"
}

func twoColumn(choice types.TemplateChoice, side, main string) string {
	class := choice.CSSClass()
	return `<div class="` + class + `"><aside class="` + class + `-sidebar">` + side +
		`</aside><section class="` + class + `-main">` + main + `</section></div>`
}

func wrap(choice types.TemplateChoice, body string) string {
	return `<div class="` + choice.CSSClass() + `">` + body + `</div>`
}

// removeAllSections strips every section matching headers. Each pass removes
// a heading, so the loop ends.
func removeAllSections(content string, headers ...string) string {
	for {
		next := extract.RemoveSection(content, headers...)
		if next == content {
			return content
		}
		content = next
	}
}
