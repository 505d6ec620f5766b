package llm

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
)

// BuildResumePrompt composes the ATS resume prompt from the form fields.
// Empty fields are sent as empty strings.
func BuildResumePrompt(f types.ResumeFields) string {
	return fmt.Sprintf(
		"Generate an ATS-friendly resume based on the following information. "+
			"Use industry keywords, optimize for ATS, and match the job description. "+
			"Do not repeat information or include a separate 'Keywords' section.\n\n"+
			"Personal Info: %s, %s, %s, %s\n"+
			"Summary: %s\n"+
			"Experience: %s\n"+
			"Education: %s\n"+
			"Skills: %s\n"+
			"Job Description: %s\n\n"+
			"Return the resume in clean HTML format.",
		f.Name, f.Email, f.Phone, f.LinkedIn,
		f.Summary, f.Experience, f.Education, f.Skills, f.JobDesc,
	)
}
