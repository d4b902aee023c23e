// Package observability tracks runtime counters for collection sweeps
// and synthesis runs, exposed through the admin API.
package observability

import (
	"sort"
	"sync"
	"time"
)

// SourceStats holds per-source sweep counters.
type SourceStats struct {
	Source       string    `json:"source"`
	Sweeps       int64     `json:"sweeps"`
	Failures     int64     `json:"failures"`
	EventsStored int64     `json:"events_stored"`
	LastSweep    time.Time `json:"last_sweep"`
	LastError    string    `json:"last_error,omitempty"`
}

// RunStats tracks counters across the daemon's lifetime. All methods
// are safe for concurrent use.
type RunStats struct {
	mu        sync.RWMutex
	startedAt time.Time
	sources   map[string]*SourceStats

	synthesisRuns     int64
	synthesisFailures int64
	lastSynthesis     time.Time
	lastBriefingLen   int
}

// NewRunStats creates a tracker anchored at the current time.
func NewRunStats() *RunStats {
	return &RunStats{
		startedAt: time.Now().UTC(),
		sources:   make(map[string]*SourceStats),
	}
}

// RecordSweep records one collection sweep attempt for a source.
func (r *RunStats) RecordSweep(source string, stored int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.sources[source]
	if !ok {
		stats = &SourceStats{Source: source}
		r.sources[source] = stats
	}

	stats.Sweeps++
	stats.LastSweep = time.Now().UTC()
	if err != nil {
		stats.Failures++
		stats.LastError = err.Error()
		return
	}
	stats.EventsStored += int64(stored)
	stats.LastError = ""
}

// RecordSynthesis records one synthesis attempt.
func (r *RunStats) RecordSynthesis(briefingLen int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.synthesisRuns++
	r.lastSynthesis = time.Now().UTC()
	if err != nil {
		r.synthesisFailures++
		return
	}
	r.lastBriefingLen = briefingLen
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	StartedAt         time.Time     `json:"started_at"`
	UptimeSeconds     float64       `json:"uptime_seconds"`
	Sources           []SourceStats `json:"sources"`
	SynthesisRuns     int64         `json:"synthesis_runs"`
	SynthesisFailures int64         `json:"synthesis_failures"`
	LastSynthesis     time.Time     `json:"last_synthesis"`
	LastBriefingLen   int           `json:"last_briefing_len"`
}

// Snapshot returns a copy of the current counters, sources sorted by
// name.
func (r *RunStats) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]SourceStats, 0, len(r.sources))
	for _, stats := range r.sources {
		sources = append(sources, *stats)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Source < sources[j].Source
	})

	return Snapshot{
		StartedAt:         r.startedAt,
		UptimeSeconds:     time.Since(r.startedAt).Seconds(),
		Sources:           sources,
		SynthesisRuns:     r.synthesisRuns,
		SynthesisFailures: r.synthesisFailures,
		LastSynthesis:     r.lastSynthesis,
		LastBriefingLen:   r.lastBriefingLen,
	}
}
