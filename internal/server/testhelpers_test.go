package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
	"github.com/jonathan/resume-analyzer/internal/requirements"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/storage"
)

// memStore is an in-memory stand-in for the Postgres store.
type memStore struct {
	mu           sync.Mutex
	resumes      map[uuid.UUID]*db.Resume
	analyses     []db.AnalysisRecord
	requirements []requirements.JobRequirements
	failCreate   bool
	clock        time.Time
}

func newMemStore() *memStore {
	return &memStore{
		resumes: make(map[uuid.UUID]*db.Resume),
		clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) CreateResume(_ context.Context, in *db.ResumeCreateInput) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return nil, errors.New("insert failed")
	}
	now := m.tick()
	r := &db.Resume{
		ID:          uuid.New(),
		Filename:    in.Filename,
		FileURL:     in.FileURL,
		ObjectKey:   in.ObjectKey,
		FileContent: in.FileContent,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.resumes[r.ID] = r
	return r, nil
}

func (m *memStore) GetResume(_ context.Context, id uuid.UUID) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListResumes(_ context.Context, limit int) ([]db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Resume{}
	for _, r := range m.resumes {
		cp := *r
		cp.FileContent = ""
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteResume(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[id]; !ok {
		return db.ErrResumeNotFound
	}
	delete(m.resumes, id)
	kept := m.analyses[:0]
	for _, a := range m.analyses {
		if a.ResumeID != id {
			kept = append(kept, a)
		}
	}
	m.analyses = kept
	return nil
}

func (m *memStore) SaveAnalysisResult(_ context.Context, resumeID uuid.UUID, skills []string, result *analysis.Result) (*db.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := db.AnalysisRecord{
		ID:             uuid.New(),
		ResumeID:       resumeID,
		RequiredSkills: skills,
		Result:         *result,
		CreatedAt:      m.tick(),
	}
	m.analyses = append(m.analyses, rec)
	return &rec, nil
}

func (m *memStore) ListAnalyses(_ context.Context, resumeID uuid.UUID) ([]db.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.AnalysisRecord{}
	for i := len(m.analyses) - 1; i >= 0; i-- {
		if m.analyses[i].ResumeID == resumeID {
			out = append(out, m.analyses[i])
		}
	}
	return out, nil
}

func (m *memStore) GetLatestAnalysis(ctx context.Context, resumeID uuid.UUID) (*db.AnalysisRecord, error) {
	all, _ := m.ListAnalyses(ctx, resumeID)
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

func (m *memStore) GetJobRequirements(_ context.Context) (*requirements.JobRequirements, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requirements) == 0 {
		return nil, nil
	}
	r := m.requirements[len(m.requirements)-1]
	return &r, nil
}

func (m *memStore) CreateJobRequirements(_ context.Context, r *requirements.JobRequirements) (*requirements.JobRequirements, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.ID = uuid.New()
	cp.CreatedAt = m.tick()
	m.requirements = append(m.requirements, cp)
	return &cp, nil
}

// memObjects is an in-memory bucket.
type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (o *memObjects) Upload(_ context.Context, key string, data []byte, contentType string) (*storage.Object, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failPut {
		return nil, errors.New("bucket unavailable")
	}
	if _, ok := o.objects[key]; ok {
		return nil, storage.ErrObjectExists
	}
	o.objects[key] = data
	return &storage.Object{
		Key:         key,
		URL:         "https://files.example.com/resumes/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (o *memObjects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, key)
	return nil
}

func (o *memObjects) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

type testEnv struct {
	server  *Server
	store   *memStore
	objects *memObjects
}

type envOption func(*Config)

func withoutStorage() envOption {
	return func(c *Config) {
		c.Service.Store = nil
		c.Service.Objects = nil
		c.Resumes = nil
		c.Objects = nil
		c.RequirementsStore = nil
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	store := newMemStore()
	objects := newMemObjects()
	provider := &requirements.Provider{Store: store}

	var seq uint64
	cfg := Config{
		Service: &pipeline.Service{
			Store:        store,
			Objects:      objects,
			Requirements: provider,
			Now:          func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
			Rand: func() uint64 {
				seq++
				return seq
			},
		},
		Resumes:           store,
		Objects:           objects,
		Requirements:      provider,
		RequirementsStore: store,
		RateLimit:         &ratelimit.Config{Enabled: false},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, store: store, objects: objects}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form upload; an empty filename omits the file part.
func multipartRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
