package llm

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildResumePrompt(t *testing.T) {
	prompt := BuildResumePrompt(types.ResumeFields{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "555",
		LinkedIn:   "in/jane",
		Summary:    "Engineer",
		Experience: "Acme",
		Education:  "BSc",
		Skills:     "Go, SQL",
		JobDesc:    "Backend role",
	})

	assert.True(t, strings.HasPrefix(prompt, "Generate an ATS-friendly resume"))
	assert.Contains(t, prompt, "Do not repeat information or include a separate 'Keywords' section.")
	assert.Contains(t, prompt, "Personal Info: Jane Doe, jane@example.com, 555, in/jane\n")
	assert.Contains(t, prompt, "Skills: Go, SQL\n")
	assert.Contains(t, prompt, "Job Description: Backend role\n\n")
	assert.True(t, strings.HasSuffix(prompt, "Return the resume in clean HTML format."))
}

func TestBuildResumePrompt_EmptyFields(t *testing.T) {
	prompt := BuildResumePrompt(types.ResumeFields{})

	assert.Contains(t, prompt, "Personal Info: , , , \n")
	assert.Contains(t, prompt, "Summary: \n")
}
