// Package scheduler runs the two recurring cycles: collection sweeps on
// a fixed interval and one synthesis run per day at a configured UTC
// hour.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/intelcore/intelcore/internal/classifier"
	"github.com/intelcore/intelcore/internal/collect"
	"github.com/intelcore/intelcore/internal/observability"
	"github.com/intelcore/intelcore/pkg/types"
)

// EventSink is the scheduler's view of the event store.
type EventSink interface {
	Store(ctx context.Context, events []types.Event) (int, error)
	LogCollection(ctx context.Context, source string, count int, status, errMsg string, duration time.Duration)
}

// Synthesizer produces a briefing from the stored event window.
type Synthesizer interface {
	Run(ctx context.Context) (string, error)
}

// Deliverer pushes a briefing to the recipient.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// Config holds the scheduler cycle settings.
type Config struct {
	// CollectionInterval is the time between collection sweeps.
	CollectionInterval time.Duration

	// BootstrapHours is the lookback used for a source with no cursor.
	BootstrapHours int

	// SynthesisHour is the UTC wall-clock hour of the daily synthesis.
	SynthesisHour int
}

// Daemon drives the collection and synthesis cycles. It runs until the
// context is cancelled or Stop is called.
type Daemon struct {
	config      Config
	sink        EventSink
	cursors     *collect.CursorStore
	collectors  []collect.Collector
	classifier  *classifier.Classifier
	synthesizer Synthesizer
	deliverer   Deliverer
	stats       *observability.RunStats
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDaemon creates a scheduler daemon.
func NewDaemon(config Config, sink EventSink, cursors *collect.CursorStore,
	collectors []collect.Collector, cls *classifier.Classifier,
	synthesizer Synthesizer, deliverer Deliverer,
	stats *observability.RunStats) *Daemon {
	return &Daemon{
		config:      config,
		sink:        sink,
		cursors:     cursors,
		collectors:  collectors,
		classifier:  cls,
		synthesizer: synthesizer,
		deliverer:   deliverer,
		stats:       stats,
		logger:      slog.With("component", "scheduler"),
	}
}

// Start begins both cycles. It returns an error if the daemon is
// already running.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("scheduler: daemon is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.done = make(chan struct{})
	d.mu.Unlock()

	go d.run(ctx)
	return nil
}

// Stop gracefully stops the daemon.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.cancel()
	<-d.done
	d.running = false
	return nil
}

// run is the main loop: an immediate sweep, then interval sweeps, with
// a daily synthesis timer alongside.
func (d *Daemon) run(ctx context.Context) {
	defer close(d.done)

	d.Sweep(ctx)

	ticker := time.NewTicker(d.config.CollectionInterval)
	defer ticker.Stop()

	next := nextSynthesis(time.Now().UTC(), d.config.SynthesisHour)
	d.logger.Info("scheduled next synthesis", "at", next)
	synthTimer := time.NewTimer(time.Until(next))
	defer synthTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Sweep(ctx)
		case <-synthTimer.C:
			if err := d.Synthesize(ctx); err != nil {
				d.logger.Error("synthesis cycle failed", "error", err)
			}
			next = nextSynthesis(time.Now().UTC(), d.config.SynthesisHour)
			d.logger.Info("scheduled next synthesis", "at", next)
			synthTimer.Reset(time.Until(next))
		}
	}
}

// Sweep runs one collection pass over every registered collector. A
// failing source is logged and does not block the others.
func (d *Daemon) Sweep(ctx context.Context) {
	for _, collector := range d.collectors {
		if ctx.Err() != nil {
			return
		}
		d.sweepSource(ctx, collector)
	}
}

// sweepSource collects one source. Exactly one audit row is written per
// attempt; the cursor advances only when the whole sweep succeeded.
func (d *Daemon) sweepSource(ctx context.Context, collector collect.Collector) {
	source := collector.Name()
	start := time.Now().UTC()

	since, ok, err := d.cursors.Get(source)
	if err != nil {
		d.logger.Error("failed to read cursor", "source", source, "error", err)
		d.sink.LogCollection(ctx, source, 0, types.CollectionFailed, err.Error(), time.Since(start))
		d.stats.RecordSweep(source, 0, err)
		return
	}
	if !ok {
		since = start.Add(-time.Duration(d.config.BootstrapHours) * time.Hour)
	}

	events, err := collector.Collect(ctx, since)
	if err != nil {
		d.logger.Error("collection sweep failed", "source", source, "error", err)
		d.sink.LogCollection(ctx, source, 0, types.CollectionFailed, err.Error(), time.Since(start))
		d.stats.RecordSweep(source, 0, err)
		return
	}

	// Domain is assigned once, at ingestion.
	for i := range events {
		if events[i].Domain == "" {
			events[i].Domain = d.classifier.Classify(events[i])
		}
	}

	stored, err := d.sink.Store(ctx, events)
	if err != nil {
		d.logger.Error("failed to store events", "source", source, "error", err)
		d.sink.LogCollection(ctx, source, 0, types.CollectionFailed, err.Error(), time.Since(start))
		d.stats.RecordSweep(source, 0, err)
		return
	}

	d.sink.LogCollection(ctx, source, stored, types.CollectionSuccess, "", time.Since(start))
	d.stats.RecordSweep(source, stored, nil)
	d.logger.Info("collection sweep complete",
		"source", source, "fetched", len(events), "stored", stored)

	if err := d.cursors.Set(source, start); err != nil {
		d.logger.Error("failed to advance cursor", "source", source, "error", err)
	}
}

// Synthesize runs one synthesis pass and delivers the briefing. An
// empty briefing means the window had no events; nothing is sent.
func (d *Daemon) Synthesize(ctx context.Context) error {
	briefing, err := d.synthesizer.Run(ctx)
	d.stats.RecordSynthesis(len(briefing), err)
	if err != nil {
		return err
	}
	if briefing == "" {
		d.logger.Info("no briefing produced, nothing to deliver")
		return nil
	}
	return d.deliverer.Deliver(ctx, briefing)
}

// RunOnce performs a single sweep followed by a single synthesis cycle.
func (d *Daemon) RunOnce(ctx context.Context) error {
	d.Sweep(ctx)
	return d.Synthesize(ctx)
}

// nextSynthesis returns the next occurrence of hour (UTC) strictly
// after now.
func nextSynthesis(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
