// Package preview keeps the form state of a profile and produces the two
// previews: the live preview rebuilt on every change and the AI-assisted
// preview produced on submit.
package preview

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/sanitize"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
	"golang.org/x/sync/singleflight"
)

// Markup shown in the preview area.
const (
	GeneratingMarkup = "<em>Generating resume with AI...</em>"
	NoContentMarkup  = "<em>No content generated.</em>"
)

// ErrorMarkup renders a generation failure inline.
func ErrorMarkup(err error) string {
	return `<span style="color:red">Error generating resume: ` + html.EscapeString(err.Error()) + `</span>`
}

// Service holds what every profile's controller shares.
type Service struct {
	kv        store.KV
	vault     *store.Vault
	newClient llm.Factory
	tier      llm.ModelTier
	metrics   *observability.Metrics
	group     singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithTier sets the model tier used for generation. Defaults to llm.TierStandard.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Service) { s.tier = tier }
}

// WithMetrics records generations and renders.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service storing profiles in kv. vault may be nil.
func NewService(kv store.KV, vault *store.Vault, newClient llm.Factory, opts ...Option) *Service {
	s := &Service{
		kv:        kv,
		vault:     vault,
		newClient: newClient,
		tier:      llm.TierStandard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the store key prefix of a profile. The empty profile
// uses unprefixed keys.
func Namespace(profile string) string {
	if profile == "" {
		return ""
	}
	return "profile:" + profile + ":"
}

// Controller returns the controller of one profile.
func (s *Service) Controller(profile string) *Controller {
	return &Controller{
		svc:     s,
		profile: profile,
		repo:    store.NewRepository(s.kv, Namespace(profile), s.vault),
	}
}

// Controller drives the previews of one profile.
type Controller struct {
	svc     *Service
	profile string
	repo    store.FieldRepository
}

// State is the restored form state.
type State struct {
	Fields    types.ResumeFields   `json:"fields"`
	Template  types.TemplateChoice `json:"template"`
	Preview   string               `json:"preview"`
	HasAPIKey bool                 `json:"has_api_key"`
}

// Result is the outcome of a generation.
type Result struct {
	HTML     string               `json:"html"`
	Template types.TemplateChoice `json:"template"`
	Layout   string               `json:"layout,omitempty"`
	// Failed is set when the AI call failed; HTML then holds the inline error.
	Failed bool `json:"failed"`
}

// Restore loads the saved state and renders its live preview.
func (c *Controller) Restore(ctx context.Context) (State, error) {
	fields, err := c.repo.LoadFields(ctx)
	if err != nil {
		return State{}, err
	}
	choice, err := c.repo.LoadTemplate(ctx)
	if err != nil {
		return State{}, err
	}
	key, err := c.repo.LoadAPIKey(ctx)
	if err != nil {
		log.Printf("[store] profile=%s: %v", c.profile, err)
	}

	return State{
		Fields:    fields,
		Template:  choice,
		Preview:   rendering.LivePreview(fields),
		HasAPIKey: key != "",
	}, nil
}

// Preview renders the live preview of the saved fields.
func (c *Controller) Preview(ctx context.Context) (string, error) {
	fields, err := c.repo.LoadFields(ctx)
	if err != nil {
		return "", err
	}
	return rendering.LivePreview(fields), nil
}

// UpdateFields replaces every field and returns the new live preview.
func (c *Controller) UpdateFields(ctx context.Context, fields types.ResumeFields) (string, error) {
	if err := c.repo.SaveFields(ctx, fields); err != nil {
		return "", err
	}
	return rendering.LivePreview(fields), nil
}

// UpdateField replaces one field and returns the new live preview.
func (c *Controller) UpdateField(ctx context.Context, name, value string) (string, error) {
	if err := c.repo.SaveField(ctx, name, value); err != nil {
		return "", err
	}
	return c.Preview(ctx)
}

// SelectTemplate saves the template choice and returns the live preview.
func (c *Controller) SelectTemplate(ctx context.Context, choice types.TemplateChoice) (string, error) {
	if err := c.repo.SaveTemplate(ctx, choice); err != nil {
		return "", err
	}
	return c.Preview(ctx)
}

// SetAPIKey stores the API key. A blank key clears it.
func (c *Controller) SetAPIKey(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return c.ClearAPIKey(ctx)
	}
	return c.repo.SaveAPIKey(ctx, key)
}

// ClearAPIKey removes the stored API key.
func (c *Controller) ClearAPIKey(ctx context.Context) error {
	return c.repo.ClearAPIKey(ctx)
}

// Generate asks the AI for resume content and renders it with the saved
// template. Without a stored key it returns ErrAPIKeyRequired and does
// nothing else. AI failures are reported in the Result, not as errors.
func (c *Controller) Generate(ctx context.Context) (Result, error) {
	fields, err := c.repo.LoadFields(ctx)
	if err != nil {
		return Result{}, err
	}
	choice, err := c.repo.LoadTemplate(ctx)
	if err != nil {
		return Result{}, err
	}
	key, err := c.repo.LoadAPIKey(ctx)
	if err != nil {
		return Result{}, err
	}
	if key == "" {
		c.svc.metrics.Generation(observability.OutcomeNoAPIKey)
		return Result{}, ErrAPIKeyRequired
	}

	prompt := llm.BuildResumePrompt(fields)
	// The call is shared with concurrent callers, so it must outlive the
	// request of whichever caller started it.
	callCtx := context.WithoutCancel(ctx)
	v, err, shared := c.svc.group.Do(Namespace(c.profile)+"\x00"+prompt, func() (any, error) {
		return c.svc.complete(callCtx, key, prompt)
	})

	content := ""
	switch {
	case errors.Is(err, llm.ErrNoContent):
		c.svc.metrics.Generation(observability.OutcomeNoContent)
		content = NoContentMarkup
	case err != nil:
		log.Printf("[generate] profile=%s failed: %v", c.profile, err)
		c.svc.metrics.Generation(observability.OutcomeFailed)
		return Result{HTML: ErrorMarkup(err), Template: choice, Failed: true}, nil
	default:
		c.svc.metrics.Generation(observability.OutcomeSuccess)
		content = v.(string)
	}

	out, kind := rendering.RenderKind(fields, sanitize.Sanitize(content), choice)
	c.svc.metrics.Render(kind.String())
	log.Printf("[generate] profile=%s template=%d layout=%s shared=%t", c.profile, int(choice), kind, shared)

	return Result{HTML: out, Template: choice, Layout: kind.String()}, nil
}

// complete makes one AI call. There are no retries.
func (s *Service) complete(ctx context.Context, key, prompt string) (string, error) {
	client, err := s.newClient(ctx, key)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Printf("[generate] failed to close client: %v", cerr)
		}
	}()
	return client.GenerateContent(ctx, prompt, s.tier)
}

// Export reports that the requested export is not available yet.
func (c *Controller) Export(format string) error {
	switch strings.ToLower(format) {
	case FormatPDF, FormatDOCX, FormatHTML:
		return &ExportNotImplementedError{Format: strings.ToLower(format)}
	default:
		return ErrUnknownExportFormat
	}
}
