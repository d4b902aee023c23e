// Package app wires the intelligence core together and manages its
// lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/intelcore/intelcore/internal/api"
	"github.com/intelcore/intelcore/internal/classifier"
	"github.com/intelcore/intelcore/internal/collect"
	"github.com/intelcore/intelcore/internal/config"
	"github.com/intelcore/intelcore/internal/delivery"
	"github.com/intelcore/intelcore/internal/memory"
	"github.com/intelcore/intelcore/internal/observability"
	"github.com/intelcore/intelcore/internal/reasoning"
	"github.com/intelcore/intelcore/internal/scheduler"
	"github.com/intelcore/intelcore/internal/store"
	"github.com/intelcore/intelcore/internal/synthesis"
)

// App owns every component of the intelligence core.
type App struct {
	cfg *config.Config

	store  *store.Store
	bank   *memory.Bank
	stats  *observability.RunStats
	daemon *scheduler.Daemon
	server *api.Server

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New validates the configuration and builds the component graph.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	a := &App{cfg: cfg}

	st, err := store.New(cfg.EventsDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	a.store = st

	orgFiles := map[string]string{}
	for _, rule := range cfg.Domains {
		if rule.OrgFile != "" {
			orgFiles[rule.Name] = rule.OrgFile
		}
	}
	a.bank = memory.NewBank(cfg.MemoryDir(), orgFiles)
	if err := a.bank.EnsureStructure(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create memory bank: %w", err)
	}

	reasoner, err := reasoning.New(cfg.Reasoning.APIKey, cfg.Reasoning.Model,
		cfg.Reasoning.MaxTokens, cfg.Reasoning.Timeout)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create reasoning client: %w", err)
	}

	cls := classifier.New(cfg.Domains)
	engine := synthesis.New(st, a.bank, cls, reasoner,
		time.Duration(cfg.Synthesis.LookbackHours)*time.Hour)

	sender := delivery.NewSender(cfg.Bridge.URL, cfg.Bridge.APIKey, cfg.Bridge.Recipient,
		cfg.Synthesis.MaxMessageLen, cfg.DryRun, cfg.Bridge.Timeout)

	collectors := []collect.Collector{
		collect.NewWhatsAppCollector(cfg.Bridge.URL, cfg.Bridge.APIKey, cfg.Bridge.Timeout),
	}
	cursors := collect.NewCursorStore(cfg.CursorPath())

	a.stats = observability.NewRunStats()
	a.daemon = scheduler.NewDaemon(scheduler.Config{
		CollectionInterval: cfg.Collection.Interval,
		BootstrapHours:     cfg.Collection.BootstrapHours,
		SynthesisHour:      cfg.Synthesis.Hour,
	}, st, cursors, collectors, cls, engine, sender, a.stats)

	if cfg.HTTP.Enabled {
		a.server = api.NewServer(cfg.HTTP.Addr, st, a.bank, a.stats, a.daemon,
			cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.IdleTimeout)
	}

	return a, nil
}

// Start launches the scheduler and, when enabled, the admin server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.daemon.Start(ctx); err != nil {
		cancel()
		a.mu.Lock()
		a.running = false
		a.cancel = nil
		a.mu.Unlock()
		return err
	}
	if a.server != nil {
		a.server.Start()
	}

	slog.Info("intelligence core started",
		"data_dir", a.cfg.DataDir,
		"collection_interval", a.cfg.Collection.Interval,
		"synthesis_hour", a.cfg.Synthesis.Hour,
		"dry_run", a.cfg.DryRun)
	return nil
}

// RunOnce performs a single collect-then-synthesize cycle and exits.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.Close()
	return a.daemon.RunOnce(ctx)
}

// Stop gracefully stops all components and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	slog.Info("shutting down")
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.daemon.Stop(); err != nil {
		slog.Error("scheduler stop error", "error", err)
	}

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			slog.Error("admin server shutdown error", "error", err)
		}
	}

	a.Close()
	slog.Info("stopped")
	return nil
}

// Close releases the store handle.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Error("failed to close event store", "error", err)
		}
		a.store = nil
	}
}

// WaitForShutdown blocks until SIGTERM/SIGINT or context cancellation,
// then stops the app.
func (a *App) WaitForShutdown(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}
	return a.Stop(context.Background())
}
