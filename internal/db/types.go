package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/analysis"
)

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 50

// MaxListLimit is the largest page a list query returns.
const MaxListLimit = 200

// Resume represents an uploaded résumé record
type Resume struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	FileURL     string    `json:"fileUrl"`
	ObjectKey   string    `json:"objectKey"`
	FileContent string    `json:"fileContent,omitempty"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ResumeCreateInput holds the fields for a new résumé row.
type ResumeCreateInput struct {
	Filename    string
	FileURL     string
	ObjectKey   string
	FileContent string // extracted text
	ContentType string
	SizeBytes   int64
}

// AnalysisRecord is a stored analysis of a résumé.
type AnalysisRecord struct {
	ID             uuid.UUID `json:"id"`
	ResumeID       uuid.UUID `json:"resumeId"`
	RequiredSkills []string  `json:"requiredSkills"`
	analysis.Result
	CreatedAt time.Time `json:"createdAt"`
}

// clampLimit normalizes a caller-provided page size.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
