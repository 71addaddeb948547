package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsehabit/pulse/internal/api"
	"github.com/pulsehabit/pulse/internal/app/catalog"
	"github.com/pulsehabit/pulse/internal/app/engine"
	"github.com/pulsehabit/pulse/internal/app/timing"
	"github.com/pulsehabit/pulse/internal/health"
	_ "github.com/pulsehabit/pulse/internal/infra/metrics" // Register Prometheus metrics
	"github.com/pulsehabit/pulse/internal/infra/signals"
	"github.com/pulsehabit/pulse/internal/infra/sqlite"
)

// Daemon is the core Pulse runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Engine  *engine.Engine
	Runner  *engine.Runner
	Learner *timing.Learner
	Health  *health.Checker
	Server  *api.Server
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	// Open SQLite
	db, err := sqlite.Open(pulseHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Decision engine over the store-backed collaborators
	eng := engine.New(db, catalog.New(), signals.New(db), cfg.Engine.CoachName)
	runner := engine.NewRunner(eng, db, cfg.EvaluateInterval())
	learner := timing.NewLearner(db, db, cfg.LearnerInterval())

	// Health checker feeds the API's /health endpoint
	checker := health.NewChecker(db, pulseHome())

	// API server
	srv := api.NewServer(eng, runner, db, checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:  cfg,
		DB:      db,
		Engine:  eng,
		Runner:  runner,
		Learner: learner,
		Health:  checker,
		Server:  srv,
	}, nil
}

// Serve starts the HTTP server and background loops, blocking until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Background services: periodic evaluation sweep, nightly timing
	// learner, health checks.
	go d.Runner.Start(ctx)
	go d.Learner.Run(ctx)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	fmt.Printf("Pulse serving on http://%s\n", addr)
	fmt.Printf("  Evaluation sweep: every %s\n", d.Config.EvaluateInterval())
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
