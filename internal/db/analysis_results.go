package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-analyzer/internal/analysis"
)

// analysisColumns are the JSONB encodings of a result, in column order.
type analysisColumns struct {
	personalInfo  []byte
	atsScore      []byte
	skills        []byte
	compatibility []byte
}

func encodeAnalysis(result *analysis.Result) (*analysisColumns, error) {
	var (
		cols analysisColumns
		err  error
	)
	if cols.personalInfo, err = json.Marshal(result.PersonalInfo); err != nil {
		return nil, fmt.Errorf("failed to marshal personal info: %w", err)
	}
	if cols.atsScore, err = json.Marshal(result.ATSScore); err != nil {
		return nil, fmt.Errorf("failed to marshal ats score: %w", err)
	}
	if cols.skills, err = json.Marshal(result.SkillsAnalysis); err != nil {
		return nil, fmt.Errorf("failed to marshal skills analysis: %w", err)
	}
	if cols.compatibility, err = json.Marshal(result.Compatibility); err != nil {
		return nil, fmt.Errorf("failed to marshal compatibility: %w", err)
	}
	return &cols, nil
}

func (c *analysisColumns) decode(result *analysis.Result) error {
	if err := json.Unmarshal(c.personalInfo, &result.PersonalInfo); err != nil {
		return fmt.Errorf("failed to unmarshal personal info: %w", err)
	}
	if err := json.Unmarshal(c.atsScore, &result.ATSScore); err != nil {
		return fmt.Errorf("failed to unmarshal ats score: %w", err)
	}
	if err := json.Unmarshal(c.skills, &result.SkillsAnalysis); err != nil {
		return fmt.Errorf("failed to unmarshal skills analysis: %w", err)
	}
	if err := json.Unmarshal(c.compatibility, &result.Compatibility); err != nil {
		return fmt.Errorf("failed to unmarshal compatibility: %w", err)
	}
	return nil
}

// SaveAnalysisResult stores an analysis for a résumé and returns the record.
func (db *DB) SaveAnalysisResult(ctx context.Context, resumeID uuid.UUID, requiredSkills []string, result *analysis.Result) (*AnalysisRecord, error) {
	cols, err := encodeAnalysis(result)
	if err != nil {
		return nil, err
	}
	if requiredSkills == nil {
		requiredSkills = []string{}
	}

	rec := AnalysisRecord{ResumeID: resumeID, RequiredSkills: requiredSkills, Result: *result}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO analysis_results
		   (resume_id, personal_info, ats_score, skills_analysis, compatibility_analysis, required_skills)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		resumeID, cols.personalInfo, cols.atsScore, cols.skills, cols.compatibility, requiredSkills,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis result: %w", err)
	}
	return &rec, nil
}

const selectAnalysis = `SELECT id, resume_id, personal_info, ats_score, skills_analysis,
		        compatibility_analysis, required_skills, created_at
		 FROM analysis_results`

func scanAnalysis(row pgx.Row) (*AnalysisRecord, error) {
	var (
		rec  AnalysisRecord
		cols analysisColumns
	)
	if err := row.Scan(&rec.ID, &rec.ResumeID, &cols.personalInfo, &cols.atsScore, &cols.skills,
		&cols.compatibility, &rec.RequiredSkills, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := cols.decode(&rec.Result); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetLatestAnalysis returns the newest analysis for a résumé, or nil, nil.
func (db *DB) GetLatestAnalysis(ctx context.Context, resumeID uuid.UUID) (*AnalysisRecord, error) {
	rec, err := scanAnalysis(db.pool.QueryRow(ctx,
		selectAnalysis+` WHERE resume_id = $1 ORDER BY created_at DESC LIMIT 1`,
		resumeID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return rec, nil
}

// ListAnalyses returns every analysis of a résumé, newest first.
func (db *DB) ListAnalyses(ctx context.Context, resumeID uuid.UUID) ([]AnalysisRecord, error) {
	rows, err := db.pool.Query(ctx,
		selectAnalysis+` WHERE resume_id = $1 ORDER BY created_at DESC`,
		resumeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []AnalysisRecord{}
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return records, nil
}
