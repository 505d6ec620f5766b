// Package server provides the HTTP API and form page of the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var notImplemented *preview.ExportNotImplementedError
	var schemaErr *schemas.ValidationError

	switch {
	case errors.As(err, &validationErr), errors.Is(err, store.ErrInvalidTemplate):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUnknownField), errors.Is(err, preview.ErrUnknownExportFormat):
		return http.StatusNotFound
	case errors.Is(err, preview.ErrAPIKeyRequired):
		return http.StatusPreconditionRequired
	case errors.As(err, &notImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the machine-readable code sent in error responses
func errorCode(err error) string {
	var notImplemented *preview.ExportNotImplementedError

	switch {
	case errors.Is(err, preview.ErrAPIKeyRequired):
		return "api_key_required"
	case errors.As(err, &notImplemented):
		return "not_implemented"
	}

	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "invalid_stored_data"
	default:
		return "internal_error"
	}
}
