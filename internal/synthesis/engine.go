// Package synthesis turns a window of stored events into a daily
// briefing: it formats the digest, loads the knowledge context, invokes
// the reasoning boundary and applies any memory updates the response
// carries.
package synthesis

import (
	"context"
	"log/slog"
	"time"

	"github.com/intelcore/intelcore/internal/classifier"
	coreerrors "github.com/intelcore/intelcore/internal/errors"
	"github.com/intelcore/intelcore/internal/memory"
	"github.com/intelcore/intelcore/pkg/types"
)

// Reasoner is the synthesis view of the reasoning boundary.
type Reasoner interface {
	Invoke(ctx context.Context, system, user string) (string, error)
}

// EventSource is the synthesis view of the event store.
type EventSource interface {
	EventsSince(ctx context.Context, since time.Time, source string) ([]types.Event, error)
}

// Engine orchestrates one synthesis run.
type Engine struct {
	events     EventSource
	bank       *memory.Bank
	patches    *memory.PatchEngine
	classifier *classifier.Classifier
	reasoner   Reasoner
	lookback   time.Duration
	logger     *slog.Logger
}

// New creates an Engine over the given store, memory bank and reasoner.
func New(events EventSource, bank *memory.Bank, cls *classifier.Classifier, reasoner Reasoner, lookback time.Duration) *Engine {
	return &Engine{
		events:     events,
		bank:       bank,
		patches:    memory.NewPatchEngine(bank),
		classifier: cls,
		reasoner:   reasoner,
		lookback:   lookback,
		logger:     slog.With("component", "synthesis"),
	}
}

// Run executes one synthesis pass and returns the briefing text. An
// empty event window returns ("", nil): nothing to synthesize is not an
// error. Memory updates embedded in the response are applied before
// returning; a reasoning failure leaves the memory bank untouched.
func (e *Engine) Run(ctx context.Context) (string, error) {
	since := time.Now().UTC().Add(-e.lookback)
	events, err := e.events.EventsSince(ctx, since, "")
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		e.logger.Info("no events in window, skipping synthesis", "since", since)
		return "", nil
	}

	domains := map[string]int{}
	for i := range events {
		if events[i].Domain == "" {
			events[i].Domain = e.classifier.Classify(events[i])
		}
		domains[events[i].Domain]++
	}
	e.logger.Info("synthesizing event window",
		"events", len(events), "domains", domains, "since", since)

	digest := FormatDigest(events)
	memoryContext, err := e.bank.LoadAll()
	if err != nil {
		return "", err
	}

	hours := int(e.lookback / time.Hour)
	response, err := e.reasoner.Invoke(ctx, SystemPrompt, BuildUserPrompt(memoryContext, digest, hours))
	if err != nil {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed, "reasoning invocation", err)
	}

	applied := e.patches.Apply(response)
	if applied > 0 {
		e.logger.Info("applied memory updates", "count", applied)
	}

	return ExtractBriefing(response), nil
}
