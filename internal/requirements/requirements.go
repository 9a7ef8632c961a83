// Package requirements supplies the job requirements a résumé is scored against.
//
// Requirements come from three places, in order of preference: the database,
// a YAML file, and a built-in default. Lookup never fails; the worst case is
// the default profile.
package requirements

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-analyzer/internal/logger"
)

// JobRequirements describes the role a résumé is compared with.
type JobRequirements struct {
	ID              uuid.UUID `json:"id,omitempty" yaml:"-"`
	JobTitle        string    `json:"jobTitle" yaml:"job_title" validate:"required,max=200"`
	RequiredSkills  []string  `json:"requiredSkills" yaml:"required_skills" validate:"required,min=1,dive,required"`
	PreferredSkills []string  `json:"preferredSkills" yaml:"preferred_skills" validate:"omitempty,dive,required"`
	Description     string    `json:"description,omitempty" yaml:"description"`
	CreatedAt       time.Time `json:"createdAt,omitempty" yaml:"-"`
}

var validate = validator.New()

// Validate checks that the requirements are usable for scoring.
func (r *JobRequirements) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid job requirements: %w", err)
	}
	return nil
}

// Normalize trims whitespace and drops blank or duplicate skills.
func (r *JobRequirements) Normalize() {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.Description = strings.TrimSpace(r.Description)
	r.RequiredSkills = dedupe(r.RequiredSkills)
	r.PreferredSkills = dedupe(r.PreferredSkills)
}

// Default returns the built-in Full Stack Developer profile.
func Default() JobRequirements {
	return JobRequirements{
		JobTitle:        "Full Stack Developer",
		RequiredSkills:  []string{"React", "TypeScript", "Node.js", "Python", "AWS"},
		PreferredSkills: []string{"Docker", "Kubernetes", "GraphQL"},
		Description:     "Full stack developer position",
	}
}

// LoadFile reads job requirements from a YAML file.
func LoadFile(path string) (*JobRequirements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file %s: %w", path, err)
	}

	var r JobRequirements
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse requirements YAML: %w", err)
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Store is the persistent source of job requirements.
// GetJobRequirements returns nil, nil when nothing is stored.
type Store interface {
	GetJobRequirements(ctx context.Context) (*JobRequirements, error)
}

// Provider resolves the active job requirements.
type Provider struct {
	Store Store  // optional
	File  string // optional YAML path
}

// Get returns the active requirements: stored, then file, then Default.
// Lookup errors are logged and skipped.
func (p *Provider) Get(ctx context.Context) JobRequirements {
	if p == nil {
		return Default()
	}

	if p.Store != nil {
		r, err := p.Store.GetJobRequirements(ctx)
		switch {
		case err != nil:
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to load stored job requirements")
		case r != nil:
			return *r
		}
	}

	if p.File != "" {
		r, err := LoadFile(p.File)
		if err == nil {
			return *r
		}
		logger.Ctx(ctx).Warn().Err(err).Str("file", p.File).Msg("failed to load job requirements file")
	}

	return Default()
}

// RequiredSkills is shorthand for Get(ctx).RequiredSkills.
func (p *Provider) RequiredSkills(ctx context.Context) []string {
	return p.Get(ctx).RequiredSkills
}

func dedupe(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
