package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questline-app/questline/internal/api"
	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/app/quiz"
	"github.com/questline-app/questline/internal/app/srs"
	_ "github.com/questline-app/questline/internal/infra/metrics" // Register Prometheus metrics
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// Daemon is the core Questline runtime. It wires together all services.
type Daemon struct {
	Config      Config
	DB          *sqlite.DB
	Progression *progression.Service
	Reviews     *srs.Scheduler
	Quizzes     *quiz.Scorer
	Server      *api.Server

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, version)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, version string) (*Daemon, error) {
	dir := cfg.Store.Dir
	if dir == "" {
		dir = questlineHome()
	}
	db, err := sqlite.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	prog := progression.NewService(db)

	intervals := cfg.Reviews.IntervalsDays
	if len(intervals) == 0 {
		intervals = srs.DefaultIntervals
	}
	reviews, err := srs.NewScheduler(db, intervals)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("review scheduler: %w", err)
	}

	quizzes := quiz.NewScorer(db, reviews)

	srv := api.NewServer(prog, reviews, quizzes, api.StaticTokens(cfg.Auth.Tokens), version)
	if cfg.Auth.AllowAnonymous {
		srv.AllowAnonymous()
	}
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:      cfg,
		DB:          db,
		Progression: prog,
		Reviews:     reviews,
		Quizzes:     quizzes,
		Server:      srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Questline serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
