/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package orchestrate fans one prompt out to several provider backends
// concurrently and exposes the evolving set of responses to the caller.
//
// Each backend stream runs on its own goroutine and writes only its own
// response slot, so no backend ever waits on another. A slow or failed
// backend never delays delivery of a faster backend's output; the round is
// finished only when every backend reaches a terminal state.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/metrics"
	"github.com/promptarena/arena/providers"
)

// ErrNoBackends is returned when StartRound is called without backends.
var ErrNoBackends = errors.New("at least one backend is required")

// EventType classifies round events.
type EventType string

const (
	// EventChunk delivers one content fragment from a backend stream.
	EventChunk EventType = "chunk"
	// EventComplete marks a backend's stream as cleanly finished.
	EventComplete EventType = "complete"
	// EventError marks a backend's stream as failed.
	EventError EventType = "error"
)

// Event is one progressive update from a running round.
type Event struct {
	Backend arena.BackendID
	Type    EventType
	// Chunk holds the content fragment for chunk events.
	Chunk string
	// Response is the backend's response snapshot, populated on
	// complete and error events.
	Response arena.Response
}

// Orchestrator starts rounds against a fixed provider registry.
type Orchestrator struct {
	registry    *providers.Registry
	metrics     *metrics.Arena
	timeout     time.Duration
	maxTokens   int64
	temperature float64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStreamTimeout bounds each backend stream. A stream that exceeds the
// bound is forced to error with a timeout reason so an unresponsive
// provider cannot stall the round forever.
func WithStreamTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithMaxTokens sets the per-backend completion budget.
func WithMaxTokens(n int64) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// WithTemperature sets the sampling temperature for all backends.
func WithTemperature(t float64) Option {
	return func(o *Orchestrator) { o.temperature = t }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Arena) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator over the given registry.
func New(registry *providers.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:    registry,
		metrics:     metrics.New("promptarena.arena"),
		timeout:     2 * time.Minute,
		maxTokens:   2048,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartRound opens one independent streaming request per backend and
// returns immediately. Progressive output is delivered on Round.Events;
// Round.Done closes once every backend is terminal.
//
// Cancelling ctx abandons the round: every open stream is closed and the
// remaining backends are forced to error.
func (o *Orchestrator) StartRound(ctx context.Context, prompt string, history []arena.PriorRound, backendIDs []arena.BackendID) (*Round, error) {
	if len(backendIDs) == 0 {
		return nil, ErrNoBackends
	}

	backends := make([]providers.Backend, 0, len(backendIDs))
	seen := make(map[arena.BackendID]bool, len(backendIDs))
	for _, id := range backendIDs {
		if seen[id] {
			return nil, fmt.Errorf("duplicate backend %q", id)
		}
		seen[id] = true
		backend, ok := o.registry.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown backend %q", id)
		}
		backends = append(backends, backend)
	}

	round := newRound(prompt, history, backendIDs)
	req := providers.Request{
		History:     history,
		Prompt:      prompt,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	for i, backend := range backends {
		round.wg.Add(1)
		go o.runStream(ctx, round, round.slots[i], backend, req)
	}

	go func() {
		round.wg.Wait()
		close(round.events)
		close(round.done)
	}()

	return round, nil
}

// runStream drives a single backend's stream to a terminal state. It is
// the only writer of its slot.
func (o *Orchestrator) runStream(ctx context.Context, round *Round, s *slot, backend providers.Backend, req providers.Request) {
	defer round.wg.Done()

	log := clog.FromContext(ctx).
		With("round", round.ID).
		With("backend", backend.ID())

	streamCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	s.setStatus(arena.StatusStreaming)

	usage, err := backend.Stream(streamCtx, req, func(chunk string) {
		if first := s.appendChunk(chunk, time.Since(start)); first {
			o.metrics.RecordFirstToken(ctx, string(backend.ID()), time.Since(start))
		}
		round.emit(ctx, Event{Backend: backend.ID(), Type: EventChunk, Chunk: chunk})
	})

	total := time.Since(start)
	if err != nil {
		reason := err.Error()
		if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
			reason = fmt.Sprintf("timeout after %s", o.timeout)
		}
		s.fail(reason, total)
		log.With("error", reason).With("total", total).Warn("Backend stream failed")
		o.metrics.RecordStreamOutcome(ctx, string(backend.ID()), string(arena.StatusError))
		round.emit(ctx, Event{Backend: backend.ID(), Type: EventError, Response: s.snapshot()})
		return
	}

	s.complete(total)
	log.With("total", total).
		With("input_tokens", usage.InputTokens).
		With("output_tokens", usage.OutputTokens).
		Info("Backend stream complete")
	o.metrics.RecordTokens(ctx, string(backend.ID()), backend.Model(), usage.InputTokens, usage.OutputTokens)
	o.metrics.RecordStreamOutcome(ctx, string(backend.ID()), string(arena.StatusComplete))
	round.emit(ctx, Event{Backend: backend.ID(), Type: EventComplete, Response: s.snapshot()})
}
