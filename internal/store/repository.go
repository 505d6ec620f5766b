package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// Keys of the persisted entries, relative to a repository namespace.
const (
	KeyFormData = "resumeFormData"
	KeyTemplate = "selectedTemplate"
	KeyAPIKey   = "geminiApiKey"
)

// ErrInvalidTemplate is returned when saving a template index outside the selectable range.
var ErrInvalidTemplate = errors.New("invalid template choice")

// FieldRepository persists the form state of one profile.
type FieldRepository interface {
	// LoadFields returns the saved fields, or zero fields when nothing was saved.
	LoadFields(ctx context.Context) (types.ResumeFields, error)
	// SaveFields overwrites the saved fields.
	SaveFields(ctx context.Context, fields types.ResumeFields) error
	// SaveField overwrites a single field, keeping the others.
	SaveField(ctx context.Context, name, value string) error
	// LoadTemplate returns the saved template, defaulting to the first one.
	LoadTemplate(ctx context.Context) (types.TemplateChoice, error)
	// SaveTemplate overwrites the saved template.
	SaveTemplate(ctx context.Context, choice types.TemplateChoice) error
	// LoadAPIKey returns the saved API key, or "" when none is saved.
	LoadAPIKey(ctx context.Context) (string, error)
	// SaveAPIKey overwrites the saved API key.
	SaveAPIKey(ctx context.Context, key string) error
	// ClearAPIKey removes the saved API key.
	ClearAPIKey(ctx context.Context) error
}

// Repository implements FieldRepository on top of a KV.
type Repository struct {
	kv        KV
	namespace string
	vault     *Vault
}

// NewRepository returns a repository whose keys are prefixed with namespace.
// A nil vault stores the API key as plain text.
func NewRepository(kv KV, namespace string, vault *Vault) *Repository {
	if vault == nil {
		vault = &Vault{}
	}
	return &Repository{kv: kv, namespace: namespace, vault: vault}
}

func (r *Repository) key(name string) string {
	return r.namespace + name
}

// LoadFields returns the saved fields. The stored document must match the
// ResumeFields schema; keys the form does not know are ignored.
func (r *Repository) LoadFields(ctx context.Context) (types.ResumeFields, error) {
	var fields types.ResumeFields

	raw, ok, err := r.kv.Get(ctx, r.key(KeyFormData))
	if err != nil {
		return fields, fmt.Errorf("failed to load form data: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return fields, nil
	}

	if err := schemas.ValidateResumeFields(raw); err != nil {
		return fields, fmt.Errorf("stored form data is invalid: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fields, fmt.Errorf("failed to parse form data: %w", err)
	}
	return fields, nil
}

// SaveFields overwrites the saved fields.
func (r *Repository) SaveFields(ctx context.Context, fields types.ResumeFields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal form data: %w", err)
	}
	if err := r.kv.Set(ctx, r.key(KeyFormData), string(data)); err != nil {
		return fmt.Errorf("failed to save form data: %w", err)
	}
	return nil
}

// SaveField loads the fields, overwrites one and saves them back.
func (r *Repository) SaveField(ctx context.Context, name, value string) error {
	fields, err := r.LoadFields(ctx)
	if err != nil {
		return err
	}
	if err := fields.Set(name, value); err != nil {
		return err
	}
	return r.SaveFields(ctx, fields)
}

// LoadTemplate returns the saved template choice.
func (r *Repository) LoadTemplate(ctx context.Context) (types.TemplateChoice, error) {
	raw, _, err := r.kv.Get(ctx, r.key(KeyTemplate))
	if err != nil {
		return types.Template1, fmt.Errorf("failed to load template: %w", err)
	}
	return types.ParseTemplateChoice(raw), nil
}

// SaveTemplate overwrites the saved template choice.
func (r *Repository) SaveTemplate(ctx context.Context, choice types.TemplateChoice) error {
	if !choice.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTemplate, int(choice))
	}
	if err := r.kv.Set(ctx, r.key(KeyTemplate), choice.String()); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// LoadAPIKey returns the saved API key.
func (r *Repository) LoadAPIKey(ctx context.Context) (string, error) {
	raw, ok, err := r.kv.Get(ctx, r.key(KeyAPIKey))
	if err != nil {
		return "", fmt.Errorf("failed to load API key: %w", err)
	}
	if !ok {
		return "", nil
	}
	key, err := r.vault.Open(raw)
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return key, nil
}

// SaveAPIKey overwrites the saved API key.
func (r *Repository) SaveAPIKey(ctx context.Context, key string) error {
	sealed, err := r.vault.Seal(strings.TrimSpace(key))
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key(KeyAPIKey), sealed); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	return nil
}

// ClearAPIKey removes the saved API key.
func (r *Repository) ClearAPIKey(ctx context.Context) error {
	if err := r.kv.Delete(ctx, r.key(KeyAPIKey)); err != nil {
		return fmt.Errorf("failed to clear API key: %w", err)
	}
	return nil
}
