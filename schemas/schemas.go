// Package schemas holds the JSON Schemas for the analyzer's public documents.
package schemas

import "embed"

// File names of the embedded schemas.
const (
	AnalysisResult  = "analysis_result.schema.json"
	JobRequirements = "job_requirements.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
