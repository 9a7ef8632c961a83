package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
)

// ReanalyzeRequest is the optional body of POST /resumes/{id}/analysis.
type ReanalyzeRequest struct {
	RequiredSkills []string `json:"requiredSkills" validate:"max=200,dive,max=100"`
}

// parseResumeID reads the {id} path value.
func parseResumeID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "Invalid resume ID"}
	}
	return id, nil
}

// lookupResume returns the résumé for the {id} path value or writes an error.
func (s *Server) lookupResume(w http.ResponseWriter, r *http.Request) (*db.Resume, bool) {
	if s.resumes == nil {
		s.fail(w, r, pipeline.ErrStorageUnavailable, "")
		return nil, false
	}

	id, err := parseResumeID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume ID")
		return nil, false
	}

	resume, err := s.resumes.GetResume(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "Failed to get resume")
		return nil, false
	}
	if resume == nil {
		s.fail(w, r, &ErrNotFound{Resource: "resume", ID: id.String()}, "")
		return nil, false
	}
	return resume, true
}

// handleListResumes lists recent résumés
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	if s.resumes == nil {
		s.fail(w, r, pipeline.ErrStorageUnavailable, "")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	resumes, err := s.resumes.ListResumes(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err, "Failed to list resumes")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"resumes": resumes,
		"count":   len(resumes),
	})
}

// handleGetResume returns a résumé including its extracted text
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	resume, ok := s.lookupResume(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleDeleteResume removes a résumé, its analyses, and its stored file
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	resume, ok := s.lookupResume(w, r)
	if !ok {
		return
	}

	if err := s.resumes.DeleteResume(r.Context(), resume.ID); err != nil {
		s.fail(w, r, err, "Failed to delete resume")
		return
	}

	if s.objects != nil && resume.ObjectKey != "" {
		if err := s.objects.Delete(r.Context(), resume.ObjectKey); err != nil {
			logger.Ctx(r.Context()).Warn().Err(err).
				Str("resume_id", resume.ID.String()).
				Str("key", resume.ObjectKey).
				Msg("failed to delete stored file")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetAnalysis returns the most recent analysis of a résumé
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	resume, ok := s.lookupResume(w, r)
	if !ok {
		return
	}

	rec, err := s.resumes.GetLatestAnalysis(r.Context(), resume.ID)
	if err != nil {
		s.fail(w, r, err, "Failed to get analysis")
		return
	}
	if rec == nil {
		s.fail(w, r, &ErrNotFound{Resource: "analysis", ID: resume.ID.String()}, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleListAnalyses returns every analysis of a résumé, newest first
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	resume, ok := s.lookupResume(w, r)
	if !ok {
		return
	}

	records, err := s.resumes.ListAnalyses(r.Context(), resume.ID)
	if err != nil {
		s.fail(w, r, err, "Failed to list analyses")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"analyses": records,
		"count":    len(records),
	})
}

// handleReanalyzeResume analyzes a stored résumé again and saves the result.
// Without a body the active job requirements are used.
func (s *Server) handleReanalyzeResume(w http.ResponseWriter, r *http.Request) {
	id, err := parseResumeID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume ID")
		return
	}

	var req ReanalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.fail(w, r, validationError(err), "")
		return
	}

	rec, err := s.service.AnalyzeStored(r.Context(), id, req.RequiredSkills)
	if err != nil {
		s.fail(w, r, err, "Failed to analyze resume")
		return
	}
	s.checkResult(r.Context(), &rec.Result)
	s.jsonResponse(w, http.StatusCreated, rec)
}
