package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/cpstats/internal/smoke"
	"github.com/okian/cpstats/pkg/logger"
)

const (
	defaultTimeout     = time.Minute
	defaultWorkers     = 2
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		handles = flag.String("handles", "tourist,Petr", "Comma separated Codeforces handles")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		workers = flag.Int("workers", defaultWorkers, "Pairs checked concurrently")
		format  = flag.String("log-format", "text", "Log format: text or json")
		verbose = flag.Bool("verbose", false, "Log every call")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := &smoke.Config{
		BaseURL: *baseURL,
		Handles: smoke.ParseHandles(*handles),
		Timeout: *timeout,
		Workers: *workers,
		Verbose: *verbose,
	}
	if err := run(cfg); err != nil {
		logger.Get().Error(context.Background(), "smoke test failed", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg *smoke.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	_, err := smoke.Run(ctx, cfg)
	return err
}
