// Package server provides the HTTP API for the résumé analyzer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/intake"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/storage"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrPayloadTooLarge indicates the request body exceeded the upload limit
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var notFound *ErrNotFound
	var unsupported *intake.ErrUnsupportedFile
	var schemaErr *schemas.ValidationError
	var tooLarge *ErrPayloadTooLarge

	switch {
	case errors.As(err, &validation), errors.As(err, &schemaErr),
		errors.As(err, &unsupported), errors.Is(err, intake.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &notFound), errors.Is(err, pipeline.ErrResumeNotFound), errors.Is(err, db.ErrResumeNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrObjectExists):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
