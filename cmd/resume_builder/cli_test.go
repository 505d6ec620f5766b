package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points the CLI at a fresh file store and clears provider settings.
func isolateEnv(t *testing.T) string {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "store.json")
	for _, key := range []string{
		"RESUME_PORT", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"RESUME_SECRET", "RESUME_PROVIDER", "RESUME_TIER", "RESUME_MODEL", "RESUME_BASE_URL", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("RESUME_STORE", "file")
	t.Setenv("RESUME_STORE_PATH", storePath)
	return storePath
}

// execute runs the root command in-process. Flags keep their values between
// runs, so tests pass every flag they depend on.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config="}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleFields = `{"name":"Jane Doe","email":"jane@example.com","skills":"Go, SQL","experience":"Acme - Engineer"}`

const sampleResponse = "```html\n<h3>Professional Experience</h3><ul><li>Built Acme billing</li></ul>\n<h3>Skills</h3><ul><li>Go</li></ul>\n```"

func TestRender_AIDriven(t *testing.T) {
	isolateEnv(t)
	fieldsFile := writeFile(t, "fields.json", sampleFields)
	responseFile := writeFile(t, "response.html", sampleResponse)

	out, err := execute(t, "", "render", "--fields", fieldsFile, "--response", responseFile, "--template", "1", "--out=", "--trace=false")
	require.NoError(t, err)

	assert.Contains(t, out, `class="template2"`)
	assert.Contains(t, out, "Built Acme billing")
	assert.Contains(t, out, "Jane Doe")
	assert.NotContains(t, out, "```")
}

func TestRender_FallbackFromStdin(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "Just some prose without any markup.", "render", "--fields=", "--response", "-", "--template", "0", "--out=", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, `class="template1"`)
}

func TestRender_WritesOutputFile(t *testing.T) {
	isolateEnv(t)
	responseFile := writeFile(t, "response.html", sampleResponse)
	outFile := filepath.Join(t.TempDir(), "resume.html")

	out, err := execute(t, "", "render", "--fields=", "--response", responseFile, "--template", "2", "--out", outFile, "--trace=false")
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `class="template3"`)
}

func TestRender_InvalidTemplate(t *testing.T) {
	isolateEnv(t)
	responseFile := writeFile(t, "response.html", sampleResponse)

	_, err := execute(t, "", "render", "--fields=", "--response", responseFile, "--template", "5", "--out=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template 5")
}

func TestRender_InvalidFieldsFile(t *testing.T) {
	isolateEnv(t)
	fieldsFile := writeFile(t, "fields.json", `{"name": 7}`)
	responseFile := writeFile(t, "response.html", sampleResponse)

	_, err := execute(t, "", "render", "--fields", fieldsFile, "--response", responseFile, "--template", "0", "--out=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fields file")
}

func TestPreview_FromFieldsFile(t *testing.T) {
	isolateEnv(t)
	fieldsFile := writeFile(t, "fields.json", sampleFields)

	out, err := execute(t, "", "preview", "--fields", fieldsFile, "--out=")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Jane Doe</h2>")
}

func TestFields_SetGetShow(t *testing.T) {
	storePath := isolateEnv(t)

	_, err := execute(t, "", "fields", "--profile=", "set", "name", "Jane Doe")
	require.NoError(t, err)
	_, err = execute(t, "Go\nSQL\n", "fields", "--profile=", "set", "skills", "-")
	require.NoError(t, err)
	_, err = execute(t, "", "fields", "--profile=", "template", "2")
	require.NoError(t, err)

	out, err := execute(t, "", "fields", "--profile=", "get", "skills")
	require.NoError(t, err)
	assert.Equal(t, "Go\nSQL\n", out)

	out, err = execute(t, "", "fields", "--profile=", "template")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = execute(t, "", "fields", "--profile=", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Normalized skills:")
	assert.Contains(t, out, "API key: not set")

	// The shared local profile uses the un-namespaced keys.
	raw, err := os.ReadFile(storePath)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "2", stored["selectedTemplate"])
	assert.Contains(t, stored["resumeFormData"], `"name":"Jane Doe"`)

	out, err = execute(t, "", "preview", "--fields=", "--profile=", "--out=")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Jane Doe</h2>")
}

func TestFields_UnknownField(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "", "fields", "--profile=", "get", "nickname")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnknownField))
}

func TestFields_ImportAndProfiles(t *testing.T) {
	isolateEnv(t)
	fieldsFile := writeFile(t, "fields.json", sampleFields)

	_, err := execute(t, "", "fields", "--profile", "work", "import", fieldsFile)
	require.NoError(t, err)

	out, err := execute(t, "", "fields", "--profile", "work", "get", "email")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com\n", out)

	out, err = execute(t, "", "fields", "--profile=", "get", "email")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}

func TestFields_APIKey(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "", "fields", "--profile=", "api-key", "AIza-test-key")
	require.NoError(t, err)
	assert.Equal(t, "API key saved!\n", out)

	out, err = execute(t, "", "fields", "--profile=", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API key: saved")

	out, err = execute(t, "", "fields", "--profile=", "api-key")
	require.NoError(t, err)
	assert.Equal(t, "API key cleared.\n", out)
}

// newCompletionServer answers chat completions with content.
func newCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_FromFieldsFile(t *testing.T) {
	isolateEnv(t)
	srv := newCompletionServer(t, sampleResponse)
	t.Setenv("RESUME_PROVIDER", "openai")
	t.Setenv("RESUME_BASE_URL", srv.URL+"/v1/")
	t.Setenv("GEMINI_API_KEY", "sk-test-key")
	fieldsFile := writeFile(t, "fields.json", sampleFields)

	out, err := execute(t, "", "generate", "--fields", fieldsFile, "--profile=", "--template", "0", "--out=")
	require.NoError(t, err)
	assert.Contains(t, out, `class="template1"`)
	assert.Contains(t, out, "Built Acme billing")
}

func TestGenerate_RequiresKeyForFieldsFile(t *testing.T) {
	isolateEnv(t)
	fieldsFile := writeFile(t, "fields.json", sampleFields)

	_, err := execute(t, "", "generate", "--fields", fieldsFile, "--profile=", "--template", "0", "--out=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestGenerate_ProfileWithoutKey(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "", "generate", "--fields=", "--profile=", "--template", "0", "--out=")
	require.Error(t, err)
	assert.True(t, errors.Is(err, preview.ErrAPIKeyRequired))
}

func TestGenerate_FromProfile(t *testing.T) {
	isolateEnv(t)
	srv := newCompletionServer(t, sampleResponse)
	t.Setenv("RESUME_PROVIDER", "openai")
	t.Setenv("RESUME_BASE_URL", srv.URL+"/v1/")

	_, err := execute(t, "", "fields", "--profile=", "set", "name", "Jane Doe")
	require.NoError(t, err)
	_, err = execute(t, "", "fields", "--profile=", "api-key", "sk-test-key")
	require.NoError(t, err)

	out, err := execute(t, "", "generate", "--fields=", "--profile=", "--template", "1", "--out=")
	require.NoError(t, err)
	assert.Contains(t, out, `class="template2"`)
	assert.Contains(t, out, "Jane Doe")
}

func TestLlmConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("RESUME_PROVIDER", "openai")
	t.Setenv("RESUME_MODEL", "gpt-4.1-mini")
	t.Setenv("RESUME_BASE_URL", "http://localhost:11434/v1/")

	cfg, err := loadConfig()
	require.NoError(t, err)

	c := llmConfig(cfg)
	assert.Equal(t, "openai", string(c.Provider))
	assert.Equal(t, "gpt-4.1-mini", c.GetModel("standard"))
	assert.Equal(t, "gpt-4o", c.GetModel("advanced"))
	assert.Equal(t, "http://localhost:11434/v1/", c.BaseURL)
}
