package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes bounds request bodies; the whole form is a few kilobytes.
const maxBodyBytes = 1 << 20

// previewResponse carries live preview markup
type previewResponse struct {
	Preview string `json:"preview"`
}

// controller returns the preview controller of the request's profile
func (s *Server) controller(r *http.Request) (*preview.Controller, error) {
	id, err := middleware.GetProfileID(r)
	if err != nil {
		return nil, err
	}
	return s.service.Controller(id.String()), nil
}

// decodeJSON decodes a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// handleGetFields returns the saved form state with its live preview
func (s *Server) handleGetFields(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	state, err := ctrl.Restore(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handlePutFields replaces every field
func (s *Server) handlePutFields(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var fields types.ResumeFields
	if err := decodeJSON(w, r, &fields); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := ctrl.UpdateFields(r.Context(), fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, previewResponse{Preview: out})
}

// handlePatchField replaces one field
func (s *Server) handlePatchField(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req types.FieldUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := ctrl.UpdateField(r.Context(), r.PathValue("name"), req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, previewResponse{Preview: out})
}

// handlePutTemplate saves the template choice
func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req types.TemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "template", Message: "must be 0, 1 or 2"})
		return
	}

	out, err := ctrl.SelectTemplate(r.Context(), types.TemplateChoice(*req.Template))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, previewResponse{Preview: out})
}

// handlePreview returns the live preview markup
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	out, err := ctrl.Preview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, out); err != nil {
		log.Printf("Error writing preview: %v", err)
	}
}

// handleGenerate runs the AI-assisted preview. A missing API key answers 428
// so the page can ask for one; AI failures still answer 200 with Failed set.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := ctrl.Generate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handlePutAPIKey stores the profile's API key
func (s *Server) handlePutAPIKey(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req types.APIKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "api_key", Message: "must be at least 8 characters"})
		return
	}

	if err := ctrl.SetAPIKey(r.Context(), req.APIKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAPIKey clears the profile's API key
func (s *Server) handleDeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := ctrl.ClearAPIKey(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport answers every export with a not-implemented notice
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeError(w, r, ctrl.Export(r.PathValue("format")))
}
