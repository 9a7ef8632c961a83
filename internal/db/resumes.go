package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrResumeNotFound is returned when deleting a résumé that does not exist.
var ErrResumeNotFound = errors.New("resume not found")

// CreateResume inserts a résumé record and returns it
func (db *DB) CreateResume(ctx context.Context, input *ResumeCreateInput) (*Resume, error) {
	var r Resume
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (filename, file_url, object_key, file_content, content_type, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, filename, file_url, object_key, file_content, content_type, size_bytes, created_at, updated_at`,
		input.Filename, input.FileURL, input.ObjectKey, input.FileContent, input.ContentType, input.SizeBytes,
	).Scan(&r.ID, &r.Filename, &r.FileURL, &r.ObjectKey, &r.FileContent, &r.ContentType,
		&r.SizeBytes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return &r, nil
}

// GetResume retrieves a résumé by ID. Returns nil, nil when not found.
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*Resume, error) {
	var r Resume
	err := db.pool.QueryRow(ctx,
		`SELECT id, filename, file_url, object_key, file_content, content_type, size_bytes, created_at, updated_at
		 FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Filename, &r.FileURL, &r.ObjectKey, &r.FileContent, &r.ContentType,
		&r.SizeBytes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &r, nil
}

// ListResumes returns recent résumés, newest first, without their text.
func (db *DB) ListResumes(ctx context.Context, limit int) ([]Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, filename, file_url, object_key, content_type, size_bytes, created_at, updated_at
		 FROM resumes ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		var r Resume
		if err := rows.Scan(&r.ID, &r.Filename, &r.FileURL, &r.ObjectKey, &r.ContentType,
			&r.SizeBytes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return resumes, nil
}

// DeleteResume removes a résumé and, by cascade, its analyses.
func (db *DB) DeleteResume(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}
