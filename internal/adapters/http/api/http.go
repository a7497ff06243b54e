// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/cpstats/internal/app"
	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/internal/domain/coach"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/okian/cpstats/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CodeforcesDependencies
	LeetCodeDependencies
	PlatformDependencies
}

// CodeforcesDependencies serves the Codeforces routes and charts.
type CodeforcesDependencies interface {
	Profile(ctx context.Context, handle string) (pipeline.Profile, error)
	Compare(ctx context.Context, h1, h2 string) (service.Comparison, error)
	CodeforcesCoach(ctx context.Context, handle string, goal int) (service.CoachReport, error)
	Sheet(ctx context.Context, handle, ladderID string) (service.Sheet, error)
}

// LeetCodeDependencies serves the LeetCode routes.
type LeetCodeDependencies interface {
	LeetCode(ctx context.Context, username string) (model.LeetCodeProfile, error)
	LeetCodeCoach(ctx context.Context, username string, goalMedium, goalHard int) (coach.LeetCodeReport, error)
}

// PlatformDependencies serves the multi-platform stats route.
type PlatformDependencies interface {
	Stats(ctx context.Context, q service.StatsQuery) (service.StatsReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	codeforcesHandler *CodeforcesHandler
	leetcodeHandler   *LeetCodeHandler
	platformHandler   *PlatformHandler
	chartHandler      *ChartHandler

	limiter        *IPLimiter
	requestTimeout time.Duration
	logger         logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLimiter sets the per-IP limiter guarding /api/stats.
func WithLimiter(l *IPLimiter) Option {
	return func(s *Server) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithRequestTimeout bounds every request context.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		codeforcesHandler: NewCodeforcesHandler(deps),
		leetcodeHandler:   NewLeetCodeHandler(deps),
		platformHandler:   NewPlatformHandler(deps),
		requestTimeout:    time.Minute,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.chartHandler = NewChartHandler(deps, s.logger)
	if s.limiter == nil {
		s.limiter = NewIPLimiter(defaultStatsLimit, defaultStatsWindow)
	}
	return s
}

// Limiter returns the per-IP limiter so callers can schedule sweeps.
func (s *Server) Limiter() *IPLimiter {
	return s.limiter
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/internal/stats", MetricsMiddleware(s.statsHandler.HandleStats, "internal_stats"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/codeforces", MetricsMiddleware(s.codeforcesHandler.HandleProfile, "codeforces"))
		r.Get("/codeforces/compare", MetricsMiddleware(s.codeforcesHandler.HandleCompare, "compare"))
		r.Post("/codeforces/coach", MetricsMiddleware(s.codeforcesHandler.HandleCoach, "codeforces_coach"))
		r.Post("/codeforces/sheet", MetricsMiddleware(s.codeforcesHandler.HandleSheet, "sheet"))
		r.Get("/leetcode", MetricsMiddleware(s.leetcodeHandler.HandleProfile, "leetcode"))
		r.Post("/leetcode/coach", MetricsMiddleware(s.leetcodeHandler.HandleCoach, "leetcode_coach"))
		r.Get("/stats", MetricsMiddleware(s.limiter.Limit(s.platformHandler.HandleStats, "stats"), "stats"))
	})

	r.Get("/charts/rating", MetricsMiddleware(s.chartHandler.HandleRating, "chart_rating"))
	r.Get("/charts/buckets", MetricsMiddleware(s.chartHandler.HandleBuckets, "chart_buckets"))
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeFailure maps a service error onto its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		err = errors.New("upstream judge unavailable, please retry")
	}
	writeError(w, status, code, err)
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
