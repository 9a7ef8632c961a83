package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-analyzer/internal/requirements"
)

// GetJobRequirements returns the most recently created job requirements,
// or nil, nil when the table is empty.
func (db *DB) GetJobRequirements(ctx context.Context) (*requirements.JobRequirements, error) {
	var r requirements.JobRequirements
	err := db.pool.QueryRow(ctx,
		`SELECT id, job_title, required_skills, preferred_skills, description, created_at
		 FROM job_requirements ORDER BY created_at DESC LIMIT 1`,
	).Scan(&r.ID, &r.JobTitle, &r.RequiredSkills, &r.PreferredSkills, &r.Description, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job requirements: %w", err)
	}
	return &r, nil
}

// CreateJobRequirements stores a new job requirements row; it becomes the
// active set returned by GetJobRequirements.
func (db *DB) CreateJobRequirements(ctx context.Context, r *requirements.JobRequirements) (*requirements.JobRequirements, error) {
	preferred := r.PreferredSkills
	if preferred == nil {
		preferred = []string{}
	}

	out := *r
	out.PreferredSkills = preferred
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_requirements (job_title, required_skills, preferred_skills, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		r.JobTitle, r.RequiredSkills, preferred, r.Description,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job requirements: %w", err)
	}
	return &out, nil
}
