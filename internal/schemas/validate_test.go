package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/requirements"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["person"],
	"properties": {
		"person": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string"}
			}
		}
	}
}`

func TestValidateJSONString(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "valid", doc: `{"person": {"name": "Jane"}}`},
		{name: "missing root field", doc: `{"age": 30}`, wantField: "(root)"},
		{name: "missing nested field", doc: `{"person": {}}`, wantField: "person"},
		{name: "wrong type", doc: `{"person": {"name": 7}}`, wantField: "person.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONString(personSchema, tt.doc)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)
		})
	}
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "(string schema)")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "atsScore.score", Message: "Must be less than or equal to 100"},
			{Field: "compatibility.verdict", Message: "must be one of the following"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. atsScore.score")
	assert.Contains(t, msg, "2. compatibility.verdict")
}

func TestValidateAnalysisResult(t *testing.T) {
	inputs := []struct {
		text   string
		skills []string
	}{
		{"", nil},
		{"JANE DOE\njane@example.com\nSenior Software Engineer\n6 years of experience\nReact TypeScript AWS", []string{"React", "Go"}},
	}

	for _, in := range inputs {
		result := analysis.Analyze(in.text, in.skills)
		assert.NoError(t, ValidateAnalysisResult(&result))
	}
}

func TestValidateAnalysisResult_Rejects(t *testing.T) {
	result := analysis.Analyze("", nil)
	result.ATSScore.Score = 140
	result.Compatibility.Verdict = "stellar"

	err := ValidateAnalysisResult(&result)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	fields := make([]string, 0, len(validationErr.Errors))
	for _, e := range validationErr.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "atsScore.score")
	assert.Contains(t, fields, "compatibility.verdict")
}

func TestValidateJobRequirements(t *testing.T) {
	d := requirements.Default()
	assert.NoError(t, ValidateJobRequirements(&d))

	err := ValidateJobRequirements(&requirements.JobRequirements{JobTitle: "SRE", RequiredSkills: []string{}})
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("missing.schema.json", map[string]any{})
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}
