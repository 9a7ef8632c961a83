package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
)

// multipartMemory is how much of a multipart body is kept in memory.
const multipartMemory = 8 << 20

// AnalyzeRequest is the body of POST /analyze-resume.
type AnalyzeRequest struct {
	ResumeText     string   `json:"resumeText" validate:"required"`
	RequiredSkills []string `json:"requiredSkills" validate:"max=200,dive,max=100"`
}

// UploadResponse is returned by POST /upload-resume.
type UploadResponse struct {
	ResumeID string `json:"resumeId"`
	FileURL  string `json:"fileUrl"`
	Message  string `json:"message"`
}

// requiredMessages overrides the generic "<field> is required" text.
var requiredMessages = map[string]string{
	"resumeText": "Resume text is required",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator output into an ErrValidation for the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return &ErrValidation{Field: fe.Field(), Message: msg}
		}
		return &ErrValidation{Field: fe.Field(), Message: fe.Field() + " is required"}
	case "max":
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("%s exceeds the maximum of %s", fe.Field(), fe.Param())}
	default:
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("%s is invalid", fe.Field())}
	}
}

// handleAnalyzeResume analyzes résumé text against the given skills
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, &ErrPayloadTooLarge{Limit: s.maxUploadBytes}, "")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		verr := validationError(err)
		var ve *ErrValidation
		if errors.As(verr, &ve) {
			s.errorResponse(w, http.StatusBadRequest, ve.Message)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, verr.Error())
		return
	}

	result := s.service.Analyze(r.Context(), req.ResumeText, req.RequiredSkills)
	s.checkResult(r.Context(), &result)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleUploadResume stores a file together with its already-extracted text
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	in, err := s.readUpload(w, r)
	if err != nil {
		var ve *ErrValidation
		if errors.As(err, &ve) {
			s.errorResponse(w, http.StatusBadRequest, "File and extracted text are required")
			return
		}
		s.fail(w, r, err, "Failed to read upload")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		s.errorResponse(w, http.StatusBadRequest, "File and extracted text are required")
		return
	}

	out, err := s.service.Upload(r.Context(), *in)
	if err != nil {
		s.fail(w, r, err, "Failed to upload file")
		return
	}

	logger.Ctx(r.Context()).Info().
		Str("resume_id", out.ResumeID.String()).
		Str("filename", in.Filename).
		Int("size", len(in.Data)).
		Msg("resume uploaded")

	s.jsonResponse(w, http.StatusOK, UploadResponse{
		ResumeID: out.ResumeID.String(),
		FileURL:  out.FileURL,
		Message:  "Resume uploaded successfully",
	})
}

// handleCreateResume analyzes an uploaded file and stores it when storage is available
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	in, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err, "Failed to read upload")
		return
	}

	out, err := s.service.UploadAndAnalyze(r.Context(), *in)
	if err != nil {
		s.fail(w, r, err, "Failed to analyze resume")
		return
	}
	s.checkResult(r.Context(), &out.Result)

	status := http.StatusOK
	if out.ResumeID != nil {
		status = http.StatusCreated
	}
	s.jsonResponse(w, status, out)
}

// readUpload parses a multipart upload: the "file" part plus the optional
// "extractedText" and "requiredSkills" fields.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*pipeline.UploadInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrPayloadTooLarge{Limit: s.maxUploadBytes}
		}
		return nil, &ErrValidation{Field: "file", Message: "expected multipart/form-data with a file"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &ErrValidation{Field: "file", Message: "file is required"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &pipeline.UploadInput{
		Filename:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Data:           data,
		Text:           r.FormValue("extractedText"),
		RequiredSkills: formSkills(r),
	}, nil
}

// formSkills reads "requiredSkills" as repeated and/or comma-separated
// values. It returns nil when the field is absent so the active job
// requirements apply.
func formSkills(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value["requiredSkills"]
	if !ok {
		return nil
	}
	return splitSkills(values...)
}

func splitSkills(values ...string) []string {
	skills := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				skills = append(skills, part)
			}
		}
	}
	return skills
}
