package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"github.com/okian/cpstats/internal/adapters/http/api"
	"github.com/okian/cpstats/internal/adapters/http/site"
	"github.com/okian/cpstats/internal/adapters/http/swagger"
	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/adapters/judge/atcoder"
	"github.com/okian/cpstats/internal/adapters/judge/codechef"
	"github.com/okian/cpstats/internal/adapters/judge/codeforces"
	"github.com/okian/cpstats/internal/adapters/judge/leetcode"
	"github.com/okian/cpstats/internal/adapters/llm"
	app "github.com/okian/cpstats/internal/app"
	"github.com/okian/cpstats/internal/config"
	"github.com/okian/cpstats/pkg/logger"
	"github.com/okian/cpstats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 90 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	requestTimeout            = 75 * time.Second
	shutdownTimeout           = 30 * time.Second
	serviceMetricsInterval    = 30 * time.Second
	sweepInterval             = time.Minute
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc := newService(cfg, log)

	limiter := api.NewIPLimiter(cfg.StatsRateLimit, cfg.StatsRateWindow)
	apiServer := api.NewServer(svc, svc,
		api.WithLimiter(limiter),
		api.WithRequestTimeout(requestTimeout),
		api.WithLogger(log.Named("http")),
	)

	scheduler, err := newScheduler(svc, limiter, cfg.StatsRateWindow)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Warn(ctx, "scheduler shutdown failed", logger.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, apiServer),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService wires the judge clients and the advisor into the service.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	judgeOpts := []judge.Option{
		judge.WithTimeout(cfg.UpstreamTimeout),
		judge.WithRateLimit(cfg.UpstreamRPS, 2),
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithProfileTTL(cfg.ProfileTTL),
		app.WithStatsTTL(cfg.StatsTTL),
		app.WithLeetCodeTTL(cfg.LeetCodeTTL),
		app.WithProblemsetTTL(cfg.ProblemsetTTL),
	}
	if cfg.LLMAPIKey != "" {
		opts = append(opts, app.WithAdvisor(llm.NewClient(&llm.Config{
			BaseURL:        cfg.LLMBaseURL,
			APIKey:         cfg.LLMAPIKey,
			Model:          cfg.LLMModel,
			MaxTokens:      cfg.LLMMaxTokens,
			RequestTimeout: cfg.UpstreamTimeout * 2,
		})))
	}

	return app.New(app.Judges{
		Codeforces: codeforces.NewClient(cfg.CodeforcesBaseURL, cfg.SubmissionCount, judgeOpts...),
		LeetCode:   leetcode.NewClient(cfg.LeetCodeGraphQLURL, judgeOpts...),
		AtCoder:    atcoder.NewClient(cfg.AtCoderBaseURL, judgeOpts...),
		CodeChef:   codechef.NewClient(cfg.CodeChefBaseURL, judgeOpts...),
	}, opts...)
}

// newRouter mounts the landing page, the docs and the API on one chi router.
func newRouter(ctx context.Context, apiServer *api.Server) http.Handler {
	r := chi.NewRouter()
	apiServer.Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// newScheduler registers the periodic housekeeping jobs.
func newScheduler(svc *app.Service, limiter *api.IPLimiter, idle time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	jobs := []struct {
		every time.Duration
		task  gocron.Task
	}{
		{sweepInterval, gocron.NewTask(func() { limiter.Sweep(idle) })},
		{metrics.RefreshInterval(), gocron.NewTask(updateSystemMetrics)},
		{serviceMetricsInterval, gocron.NewTask(func() { _ = svc.GetStats() })},
	}
	for _, j := range jobs {
		if _, err := s.NewJob(gocron.DurationJob(j.every), j.task); err != nil {
			_ = s.Shutdown()
			return nil, err
		}
	}
	return s, nil
}

// metricsOptions maps the metrics settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithRefreshInterval(cfg.MetricsRefresh),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
