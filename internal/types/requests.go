package types

import "github.com/go-playground/validator/v10"

// FieldUpdateRequest carries a single field edit.
type FieldUpdateRequest struct {
	Value string `json:"value"`
}

// TemplateRequest selects a template. Template is a pointer so that an
// explicit 0 can be told apart from a missing value.
type TemplateRequest struct {
	Template *int `json:"template" validate:"required,min=0,max=2"`
}

// APIKeyRequest stores the generative-AI API key.
type APIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required,min=8"`
}

// Validate validates the TemplateRequest using the validator.
func (r *TemplateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the APIKeyRequest using the validator.
func (r *APIKeyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
