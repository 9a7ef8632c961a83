package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
	"github.com/jonathan/resume-analyzer/internal/requirements"
	"github.com/jonathan/resume-analyzer/internal/schemas"
)

// handleGetJobRequirements returns the active job requirements
func (s *Server) handleGetJobRequirements(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.requirements.Get(r.Context()))
}

// handleCreateJobRequirements stores a new requirements profile, which becomes the active one
func (s *Server) handleCreateJobRequirements(w http.ResponseWriter, r *http.Request) {
	if s.requirementsStore == nil {
		s.fail(w, r, pipeline.ErrStorageUnavailable, "")
		return
	}

	var req requirements.JobRequirements
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req.Normalize()
	if err := schemas.ValidateJobRequirements(&req); err != nil {
		s.fail(w, r, err, "Invalid job requirements")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, &ErrValidation{Field: "body", Message: err.Error()}, "")
		return
	}

	created, err := s.requirementsStore.CreateJobRequirements(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err, "Failed to save job requirements")
		return
	}

	logger.Ctx(r.Context()).Info().
		Str("id", created.ID.String()).
		Str("job_title", created.JobTitle).
		Strs("required_skills", created.RequiredSkills).
		Msg("job requirements updated")

	s.jsonResponse(w, http.StatusCreated, created)
}
