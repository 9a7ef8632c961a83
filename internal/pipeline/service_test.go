package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/intake"
	"github.com/jonathan/resume-analyzer/internal/queue"
	"github.com/jonathan/resume-analyzer/internal/storage"
)

const resumeText = "JANE DOE\njane@example.com\nSoftware Engineer\n5 years of experience\nReact TypeScript Node.js AWS"

type fakeStore struct {
	mu        sync.Mutex
	resumes   map[uuid.UUID]*db.Resume
	analyses  []db.AnalysisRecord
	createErr error
	saveErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{resumes: map[uuid.UUID]*db.Resume{}}
}

func (f *fakeStore) CreateResume(_ context.Context, in *db.ResumeCreateInput) (*db.Resume, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &db.Resume{
		ID:          uuid.New(),
		Filename:    in.Filename,
		FileURL:     in.FileURL,
		ObjectKey:   in.ObjectKey,
		FileContent: in.FileContent,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
	}
	f.resumes[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetResume(_ context.Context, id uuid.UUID) (*db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumes[id], nil
}

func (f *fakeStore) SaveAnalysisResult(_ context.Context, resumeID uuid.UUID, skills []string, result *analysis.Result) (*db.AnalysisRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := db.AnalysisRecord{ID: uuid.New(), ResumeID: resumeID, RequiredSkills: skills, Result: *result}
	f.analyses = append(f.analyses, rec)
	return &rec, nil
}

type fakeObjects struct {
	objects   map[string][]byte
	types     map[string]string
	uploadErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Upload(_ context.Context, key string, data []byte, contentType string) (*storage.Object, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.objects[key] = data
	f.types[key] = contentType
	return &storage.Object{Key: key, URL: "https://cdn.example.com/resumes/" + key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeCache struct {
	entries map[string]analysis.Result
	gets    int
	getErr  error
}

func (f *fakeCache) Get(_ context.Context, key string) (*analysis.Result, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.entries[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeCache) Set(_ context.Context, key string, r *analysis.Result) error {
	f.entries[key] = *r
	return nil
}

type fakePublisher struct {
	events []queue.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e queue.Event) error {
	f.events = append(f.events, e)
	return f.err
}

type staticSkills []string

func (s staticSkills) RequiredSkills(context.Context) []string { return s }

func newService() (*Service, *fakeStore, *fakeObjects, *fakePublisher) {
	store, objects, pub := newFakeStore(), newFakeObjects(), &fakePublisher{}
	svc := &Service{
		Store:        store,
		Objects:      objects,
		Publisher:    pub,
		Requirements: staticSkills{"React", "Python"},
		Now:          func() time.Time { return time.UnixMilli(1700000000000) },
		Rand:         func() uint64 { return 46655 }, // "zzz" in base 36
	}
	return svc, store, objects, pub
}

func TestAnalyze_MatchesCore(t *testing.T) {
	svc := &Service{}
	assert.Equal(t, analysis.Analyze(resumeText, []string{"Go"}), svc.Analyze(context.Background(), resumeText, []string{"Go"}))
}

func TestAnalyze_CacheThrough(t *testing.T) {
	ctx := context.Background()
	c := &fakeCache{entries: map[string]analysis.Result{}}
	svc := &Service{Cache: c}

	first := svc.Analyze(ctx, resumeText, []string{"React"})
	assert.Len(t, c.entries, 1)

	// A poisoned entry proves the second call is served from cache
	for k, v := range c.entries {
		v.ATSScore.Score = 1
		c.entries[k] = v
	}
	second := svc.Analyze(ctx, resumeText, []string{"React"})
	assert.Equal(t, 1, second.ATSScore.Score)
	assert.NotEqual(t, first.ATSScore.Score, second.ATSScore.Score)
	assert.Equal(t, 2, c.gets)
}

func TestAnalyze_CacheErrorFallsThrough(t *testing.T) {
	c := &fakeCache{entries: map[string]analysis.Result{}, getErr: errors.New("redis down")}
	svc := &Service{Cache: c}

	got := svc.Analyze(context.Background(), resumeText, nil)
	assert.Equal(t, analysis.Analyze(resumeText, []string{}), got)
}

func TestResolveSkills(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Requirements: staticSkills{"AWS"}}

	assert.Equal(t, []string{"Go"}, svc.ResolveSkills(ctx, []string{"Go"}))
	assert.Equal(t, []string{}, svc.ResolveSkills(ctx, []string{}))
	assert.Equal(t, []string{"AWS"}, svc.ResolveSkills(ctx, nil))
	assert.Equal(t, []string{}, (&Service{}).ResolveSkills(ctx, nil))
}

func TestUpload(t *testing.T) {
	svc, store, objects, pub := newService()

	out, err := svc.Upload(context.Background(), UploadInput{
		Filename:       "Jane Resume.PDF",
		Data:           []byte("%PDF-1.7"),
		Text:           resumeText,
		RequiredSkills: []string{"Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-zzz.pdf", out.ObjectKey)
	assert.Equal(t, "https://cdn.example.com/resumes/1700000000000-zzz.pdf", out.FileURL)
	assert.Equal(t, "application/pdf", objects.types[out.ObjectKey])

	saved := store.resumes[out.ResumeID]
	require.NotNil(t, saved)
	assert.Equal(t, resumeText, saved.FileContent)
	assert.Equal(t, int64(8), saved.SizeBytes)

	require.Len(t, pub.events, 1)
	assert.Equal(t, out.ResumeID, pub.events[0].ResumeID)
	assert.Equal(t, []string{"Go"}, pub.events[0].RequiredSkills)
}

func TestUpload_ExtractsTextWhenMissing(t *testing.T) {
	svc, store, _, _ := newService()

	out, err := svc.Upload(context.Background(), UploadInput{Filename: "cv.docx", Data: []byte("PK\x03\x04")})
	require.NoError(t, err)
	assert.Equal(t, intake.SampleResumeText, store.resumes[out.ResumeID].FileContent)
}

func TestUpload_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		_, err := (&Service{}).Upload(ctx, UploadInput{Filename: "a.txt", Data: []byte("x")})
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("unsupported file", func(t *testing.T) {
		svc, _, _, _ := newService()
		_, err := svc.Upload(ctx, UploadInput{Filename: "a.png", Data: []byte("x")})
		var unsupported *intake.ErrUnsupportedFile
		assert.ErrorAs(t, err, &unsupported)
	})

	t.Run("upload error", func(t *testing.T) {
		svc, _, objects, pub := newService()
		objects.uploadErr = errors.New("bucket missing")
		_, err := svc.Upload(ctx, UploadInput{Filename: "a.txt", Data: []byte("x")})
		assert.ErrorContains(t, err, "failed to upload file")
		assert.Empty(t, pub.events)
	})

	t.Run("db error removes object", func(t *testing.T) {
		svc, store, objects, _ := newService()
		store.createErr = errors.New("constraint violation")
		_, err := svc.Upload(ctx, UploadInput{Filename: "a.txt", Data: []byte("x")})
		assert.ErrorContains(t, err, "failed to save resume data")
		assert.Empty(t, objects.objects)
	})

	t.Run("publish error is not fatal", func(t *testing.T) {
		svc, _, _, pub := newService()
		pub.err = errors.New("broker unreachable")
		out, err := svc.Upload(ctx, UploadInput{Filename: "a.txt", Data: []byte("JANE DOE")})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, out.ResumeID)
	})
}

func TestUploadAndAnalyze(t *testing.T) {
	svc, store, _, pub := newService()

	out, err := svc.UploadAndAnalyze(context.Background(), UploadInput{
		Filename: "resume.txt",
		Data:     []byte(resumeText),
	})
	require.NoError(t, err)

	// Skills fall back to the requirements source
	want := analysis.Analyze(resumeText, []string{"React", "Python"})
	assert.Equal(t, want, out.Result)
	require.NotNil(t, out.ResumeID)
	assert.Empty(t, out.UploadError)

	require.Len(t, store.analyses, 1)
	assert.Equal(t, *out.ResumeID, store.analyses[0].ResumeID)
	assert.Equal(t, []string{"React", "Python"}, store.analyses[0].RequiredSkills)
	assert.Empty(t, pub.events, "analysis already done, no event needed")
}

func TestUploadAndAnalyze_UploadFailureKeepsAnalysis(t *testing.T) {
	svc, store, objects, _ := newService()
	objects.uploadErr = errors.New("quota exceeded")

	out, err := svc.UploadAndAnalyze(context.Background(), UploadInput{
		Filename:       "resume.txt",
		Data:           []byte(resumeText),
		RequiredSkills: []string{"React"},
	})
	require.NoError(t, err)
	assert.Nil(t, out.ResumeID)
	assert.Contains(t, out.UploadError, "quota exceeded")
	assert.Equal(t, analysis.Analyze(resumeText, []string{"React"}), out.Result)
	assert.Empty(t, store.analyses)
}

func TestUploadAndAnalyze_SaveFailureIsNotFatal(t *testing.T) {
	svc, store, _, _ := newService()
	store.saveErr = errors.New("disk full")

	out, err := svc.UploadAndAnalyze(context.Background(), UploadInput{Filename: "resume.txt", Data: []byte(resumeText)})
	require.NoError(t, err)
	assert.NotNil(t, out.ResumeID)
}

func TestUploadAndAnalyze_WithoutStorage(t *testing.T) {
	svc := &Service{}
	out, err := svc.UploadAndAnalyze(context.Background(), UploadInput{Filename: "resume.txt", Data: []byte(resumeText)})
	require.NoError(t, err)
	assert.Nil(t, out.ResumeID)
	assert.Equal(t, ErrStorageUnavailable.Error(), out.UploadError)
}

func TestUploadAndAnalyze_EmptyFile(t *testing.T) {
	svc, _, _, _ := newService()
	_, err := svc.UploadAndAnalyze(context.Background(), UploadInput{Filename: "resume.txt"})
	assert.ErrorIs(t, err, intake.ErrEmptyFile)
}

func TestAnalyzeStored_AndHandleEvent(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newService()

	up, err := svc.Upload(ctx, UploadInput{Filename: "resume.txt", Data: []byte(resumeText)})
	require.NoError(t, err)

	rec, err := svc.AnalyzeStored(ctx, up.ResumeID, []string{"AWS"})
	require.NoError(t, err)
	assert.Equal(t, analysis.Analyze(resumeText, []string{"AWS"}), rec.Result)

	require.NoError(t, svc.HandleEvent(ctx, queue.Event{ResumeID: up.ResumeID}))
	require.Len(t, store.analyses, 2)
	assert.Equal(t, []string{"React", "Python"}, store.analyses[1].RequiredSkills)
}

func TestAnalyzeStored_Missing(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService()

	_, err := svc.AnalyzeStored(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrResumeNotFound)

	// Events for deleted résumés are acknowledged, not retried
	assert.NoError(t, svc.HandleEvent(ctx, queue.Event{ResumeID: uuid.New()}))

	_, err = (&Service{}).AnalyzeStored(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
