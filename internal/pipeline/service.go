// Package pipeline orchestrates résumé intake, analysis, storage and
// persistence on top of the pure analysis core.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/cache"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/intake"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/queue"
	"github.com/jonathan/resume-analyzer/internal/storage"
)

// ErrStorageUnavailable is returned by operations that need persistence
// when no database or bucket is configured.
var ErrStorageUnavailable = errors.New("storage is not configured")

// ErrResumeNotFound is returned when a stored résumé does not exist.
var ErrResumeNotFound = errors.New("resume not found")

// Store persists résumés and their analyses.
type Store interface {
	CreateResume(ctx context.Context, input *db.ResumeCreateInput) (*db.Resume, error)
	GetResume(ctx context.Context, id uuid.UUID) (*db.Resume, error)
	SaveAnalysisResult(ctx context.Context, resumeID uuid.UUID, requiredSkills []string, result *analysis.Result) (*db.AnalysisRecord, error)
}

// ObjectStore keeps the uploaded files.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// ResultCache memoizes analysis results.
type ResultCache interface {
	Get(ctx context.Context, key string) (*analysis.Result, error)
	Set(ctx context.Context, key string, result *analysis.Result) error
}

// Publisher announces uploads for background analysis.
type Publisher interface {
	Publish(ctx context.Context, e queue.Event) error
}

// SkillSource supplies the required skills when a caller gives none.
type SkillSource interface {
	RequiredSkills(ctx context.Context) []string
}

// Service wires the collaborators together. Every field is optional;
// operations that need a missing collaborator return ErrStorageUnavailable.
type Service struct {
	Store        Store
	Objects      ObjectStore
	Cache        ResultCache
	Publisher    Publisher
	Requirements SkillSource

	Now  func() time.Time
	Rand func() uint64
}

// UploadInput is a file received from a client.
type UploadInput struct {
	Filename       string
	ContentType    string
	Data           []byte
	Text           string   // extracted text; derived from Data when empty
	RequiredSkills []string // nil means "use the active job requirements"
}

// UploadOutput identifies a stored résumé.
type UploadOutput struct {
	ResumeID  uuid.UUID `json:"resumeId"`
	FileURL   string    `json:"fileUrl"`
	ObjectKey string    `json:"objectKey"`
}

// AnalyzeOutput is the outcome of an upload-and-analyze request.
// ResumeID is nil when the upload failed; the analysis is still valid.
type AnalyzeOutput struct {
	Result      analysis.Result `json:"result"`
	ResumeID    *uuid.UUID      `json:"resumeId,omitempty"`
	FileURL     string          `json:"fileUrl,omitempty"`
	UploadError string          `json:"uploadError,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) random() uint64 {
	if s.Rand != nil {
		return s.Rand()
	}
	return rand.Uint64()
}

// Analyze runs the analysis, consulting the cache first. Cache failures are
// logged and never fail the call.
func (s *Service) Analyze(ctx context.Context, text string, requiredSkills []string) analysis.Result {
	if requiredSkills == nil {
		requiredSkills = []string{}
	}
	if s.Cache == nil {
		return analysis.Analyze(text, requiredSkills)
	}

	log := logger.Ctx(ctx)
	key := cache.Key(text, requiredSkills)
	cached, err := s.Cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("analysis cache read failed")
	}
	if cached != nil {
		log.Debug().Str("key", key).Msg("analysis cache hit")
		return *cached
	}

	result := analysis.Analyze(text, requiredSkills)
	if err := s.Cache.Set(ctx, key, &result); err != nil {
		log.Warn().Err(err).Msg("analysis cache write failed")
	}
	return result
}

// ResolveSkills returns skills, or the active requirements when skills is nil.
func (s *Service) ResolveSkills(ctx context.Context, skills []string) []string {
	if skills != nil {
		return skills
	}
	if s.Requirements == nil {
		return []string{}
	}
	return s.Requirements.RequiredSkills(ctx)
}

// ExtractText returns the analyzable text of an upload.
func ExtractText(in *UploadInput) (string, error) {
	if in.Text != "" {
		return in.Text, nil
	}
	return intake.ExtractText(in.Filename, in.ContentType, in.Data)
}

// Upload stores the file and records the résumé, then publishes an upload
// event so a worker can analyze it.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	out, err := s.store(ctx, &in)
	if err != nil {
		return nil, err
	}

	if s.Publisher != nil {
		event := queue.Event{ResumeID: out.ResumeID, RequiredSkills: in.RequiredSkills, UploadedAt: s.now().UTC()}
		if err := s.Publisher.Publish(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("resume_id", out.ResumeID.String()).Msg("failed to publish upload event")
		}
	}
	return out, nil
}

// store uploads the object and inserts the résumé row. The object is
// removed again when the insert fails.
func (s *Service) store(ctx context.Context, in *UploadInput) (*UploadOutput, error) {
	if s.Store == nil || s.Objects == nil {
		return nil, ErrStorageUnavailable
	}

	text, err := ExtractText(in)
	if err != nil {
		return nil, err
	}

	contentType := intake.ContentType(in.Filename, in.ContentType)
	key := storage.ObjectKey(in.Filename, s.now(), s.random())
	obj, err := s.Objects.Upload(ctx, key, in.Data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	resume, err := s.Store.CreateResume(ctx, &db.ResumeCreateInput{
		Filename:    in.Filename,
		FileURL:     obj.URL,
		ObjectKey:   obj.Key,
		FileContent: text,
		ContentType: contentType,
		SizeBytes:   int64(len(in.Data)),
	})
	if err != nil {
		if delErr := s.Objects.Delete(ctx, obj.Key); delErr != nil {
			logger.Ctx(ctx).Warn().Err(delErr).Str("key", obj.Key).Msg("failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("failed to save resume data: %w", err)
	}

	return &UploadOutput{ResumeID: resume.ID, FileURL: resume.FileURL, ObjectKey: obj.Key}, nil
}

// UploadAndAnalyze analyzes the file, then tries to store it. A failed upload
// is reported in the output but does not fail the call; the analysis is
// persisted only when the upload produced a résumé id.
func (s *Service) UploadAndAnalyze(ctx context.Context, in UploadInput) (*AnalyzeOutput, error) {
	text, err := ExtractText(&in)
	if err != nil {
		return nil, err
	}
	in.Text = text

	skills := s.ResolveSkills(ctx, in.RequiredSkills)
	out := &AnalyzeOutput{Result: s.Analyze(ctx, text, skills)}

	log := logger.Ctx(ctx)
	uploaded, err := s.store(ctx, &in)
	if err != nil {
		log.Warn().Err(err).Str("filename", in.Filename).Msg("upload failed, returning analysis only")
		out.UploadError = err.Error()
		return out, nil
	}

	out.ResumeID = &uploaded.ResumeID
	out.FileURL = uploaded.FileURL
	if _, err := s.Store.SaveAnalysisResult(ctx, uploaded.ResumeID, skills, &out.Result); err != nil {
		log.Warn().Err(err).Str("resume_id", uploaded.ResumeID.String()).Msg("failed to save analysis result")
	}
	return out, nil
}

// AnalyzeStored analyzes a previously uploaded résumé and saves the result.
func (s *Service) AnalyzeStored(ctx context.Context, resumeID uuid.UUID, requiredSkills []string) (*db.AnalysisRecord, error) {
	if s.Store == nil {
		return nil, ErrStorageUnavailable
	}

	resume, err := s.Store.GetResume(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, fmt.Errorf("%w: %s", ErrResumeNotFound, resumeID)
	}

	skills := s.ResolveSkills(ctx, requiredSkills)
	result := s.Analyze(ctx, resume.FileContent, skills)
	return s.Store.SaveAnalysisResult(ctx, resumeID, skills, &result)
}

// HandleEvent is the queue handler for upload events.
func (s *Service) HandleEvent(ctx context.Context, e queue.Event) error {
	rec, err := s.AnalyzeStored(ctx, e.ResumeID, e.RequiredSkills)
	if err != nil {
		if errors.Is(err, ErrResumeNotFound) {
			// Deleted before the worker got to it
			logger.Ctx(ctx).Info().Str("resume_id", e.ResumeID.String()).Msg("skipping event for deleted resume")
			return nil
		}
		return err
	}

	logger.Ctx(ctx).Info().
		Str("resume_id", e.ResumeID.String()).
		Int("ats_score", rec.ATSScore.Score).
		Str("verdict", string(rec.Compatibility.Verdict)).
		Msg("stored analysis")
	return nil
}
