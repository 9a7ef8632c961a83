package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
	"github.com/jonathan/resume-analyzer/internal/requirements"
	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
)

// DefaultMaxUploadBytes bounds request bodies when Config leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// CORS values sent on every response.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

// ResumeStore reads and deletes stored résumés and their analyses.
type ResumeStore interface {
	GetResume(ctx context.Context, id uuid.UUID) (*db.Resume, error)
	ListResumes(ctx context.Context, limit int) ([]db.Resume, error)
	DeleteResume(ctx context.Context, id uuid.UUID) error
	GetLatestAnalysis(ctx context.Context, resumeID uuid.UUID) (*db.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, resumeID uuid.UUID) ([]db.AnalysisRecord, error)
}

// RequirementsStore persists new job requirements.
type RequirementsStore interface {
	CreateJobRequirements(ctx context.Context, r *requirements.JobRequirements) (*requirements.JobRequirements, error)
}

// ObjectRemover deletes uploaded files.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// Pinger is a dependency reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration. Only Service is required; routes whose
// collaborator is missing answer 503.
type Config struct {
	Port           int
	MaxUploadBytes int64

	Service           *pipeline.Service
	Resumes           ResumeStore
	Objects           ObjectRemover
	Requirements      *requirements.Provider
	RequirementsStore RequirementsStore

	// Auth protects write routes when set.
	Auth         middleware.TokenValidator
	RateLimit    *ratelimit.Config
	HealthChecks map[string]Pinger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate

	service           *pipeline.Service
	resumes           ResumeStore
	objects           ObjectRemover
	requirements      *requirements.Provider
	requirementsStore RequirementsStore
	auth              middleware.TokenValidator
	healthChecks      map[string]Pinger
	maxUploadBytes    int64
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("server requires a pipeline service")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		loaded, err := ratelimit.LoadConfig()
		if err != nil {
			return nil, err
		}
		rateConfig = loaded
	}

	s := &Server{
		rateLimiter:       ratelimit.NewLimiter(rateConfig),
		validate:          newValidator(),
		service:           cfg.Service,
		resumes:           cfg.Resumes,
		objects:           cfg.Objects,
		requirements:      cfg.Requirements,
		requirementsStore: cfg.RequirementsStore,
		auth:              cfg.Auth,
		healthChecks:      cfg.HealthChecks,
		maxUploadBytes:    cfg.MaxUploadBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Analysis endpoints
	mux.HandleFunc("POST /analyze-resume", s.handleAnalyzeResume)
	mux.Handle("POST /upload-resume", s.authenticated(s.handleUploadResume))
	mux.HandleFunc("/analyze-resume", s.methodNotAllowed(http.MethodPost))
	mux.HandleFunc("/upload-resume", s.methodNotAllowed(http.MethodPost))

	// Stored résumés
	mux.HandleFunc("GET /resumes", s.handleListResumes)
	mux.Handle("POST /resumes", s.authenticated(s.handleCreateResume))
	mux.HandleFunc("GET /resumes/{id}", s.handleGetResume)
	mux.Handle("DELETE /resumes/{id}", s.adminOnly(s.handleDeleteResume))
	mux.HandleFunc("GET /resumes/{id}/analysis", s.handleGetAnalysis)
	mux.Handle("POST /resumes/{id}/analysis", s.authenticated(s.handleReanalyzeResume))
	mux.HandleFunc("GET /resumes/{id}/analyses", s.handleListAnalyses)

	// Job requirements
	mux.HandleFunc("GET /job-requirements", s.handleGetJobRequirements)
	mux.Handle("POST /job-requirements", s.adminOnly(s.handleCreateJobRequirements))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	logger.Info().Msg("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// authenticated requires a valid bearer token when auth is configured.
func (s *Server) authenticated(h http.HandlerFunc) http.Handler {
	if s.auth == nil {
		return h
	}
	return middleware.AuthMiddleware(s.auth, s.errorResponse)(h)
}

// adminOnly additionally requires the admin role when auth is configured.
func (s *Server) adminOnly(h http.HandlerFunc) http.Handler {
	if s.auth == nil {
		return h
	}
	return middleware.AuthMiddleware(s.auth, s.errorResponse)(
		middleware.RequireRole(s.errorResponse, middleware.RoleAdmin)(h),
	)
}

// withCORS adds CORS headers and answers preflight requests
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging attaches a request-scoped logger and logs each completed request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		l := logger.Logger.With().Str("request_id", requestID).Logger()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(l.WithContext(r.Context())))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = l.Error()
		case status >= 400:
			evt = l.Warn()
		default:
			evt = l.Info()
		}
		evt.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// methodNotAllowed answers requests whose path exists under another method.
func (s *Server) methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow+", OPTIONS")
		s.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleHealth returns server health status along with dependency checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if len(s.healthChecks) == 0 {
		s.jsonResponse(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.healthChecks))
	for name, p := range s.healthChecks {
		if err := p.Ping(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("dependency", name).Msg("health check failed")
			checks[name] = "unavailable"
			resp["status"] = "degraded"
			continue
		}
		checks[name] = "ok"
	}
	resp["checks"] = checks
	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status. Client errors echo the error text; server
// errors are logged and answered with message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := HTTPStatus(err)

	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		details := make([]map[string]string, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			details = append(details, map[string]string{"field": fe.Field, "message": fe.Message})
		}
		s.jsonResponse(w, status, map[string]any{"error": message, "details": details})
		return
	}

	switch {
	case status == http.StatusInternalServerError:
		logger.Ctx(r.Context()).Error().Err(err).Msg(message)
	case status >= 500:
		logger.Ctx(r.Context()).Warn().Err(err).Msg(message)
		message = err.Error()
	default:
		message = err.Error()
	}
	s.errorResponse(w, status, message)
}

// checkResult validates a result against the published JSON Schema when
// debug logging is on.
func (s *Server) checkResult(ctx context.Context, result *analysis.Result) {
	log := logger.Ctx(ctx)
	if zerolog.GlobalLevel() > zerolog.DebugLevel || log.GetLevel() > zerolog.DebugLevel {
		return
	}
	if err := schemas.ValidateAnalysisResult(result); err != nil {
		log.Warn().Err(err).Msg("analysis result does not match schema")
	}
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	logger.Warn().
		Str("client", clientID).
		Int("limit", info.Limit).
		Dur("retry_after", info.RetryAfter).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
