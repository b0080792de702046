/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package providers defines the streaming backend contract shared by every
// language-model provider, plus a registry for ordered lookup.
package providers

import (
	"context"
	"fmt"

	"github.com/promptarena/arena/arena"
)

// Request is one streaming generation request. History carries the prior
// rounds of the conversation; Prompt is the current round's input.
type Request struct {
	System      string
	History     []arena.PriorRound
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Turn is a provider-independent conversation turn.
type Turn struct {
	Role string // "user" or "assistant"
	Text string
}

// TurnsFor flattens the request into alternating turns from the point of
// view of one backend: each prior round contributes the user prompt and
// that backend's own earlier answer.
func (r Request) TurnsFor(id arena.BackendID) []Turn {
	turns := make([]Turn, 0, len(r.History)*2+1)
	for _, round := range r.History {
		turns = append(turns, Turn{Role: "user", Text: round.Prompt})
		answer := round.Responses[id]
		if answer == "" {
			// Keep roles alternating even when this backend sat out
			// or errored in the earlier round.
			answer = "(no response in this round)"
		}
		turns = append(turns, Turn{Role: "assistant", Text: answer})
	}
	return append(turns, Turn{Role: "user", Text: r.Prompt})
}

// Usage reports token consumption for one completed stream.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Backend is a single language-model provider endpoint capable of
// streaming a text completion.
type Backend interface {
	// ID is the stable backend identifier used in rounds and stats.
	ID() arena.BackendID

	// Model names the underlying model, for logs and metrics.
	Model() string

	// Stream opens one streaming generation request and invokes emit for
	// every content fragment in arrival order. It blocks until the stream
	// terminates and returns token usage on clean termination.
	Stream(ctx context.Context, req Request, emit func(chunk string)) (Usage, error)
}

// Registry holds the selectable backends in a fixed display order.
type Registry struct {
	ordered []Backend
	byID    map[arena.BackendID]Backend
}

// NewRegistry builds a registry from the given backends.
// Duplicate IDs are rejected.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{byID: make(map[arena.BackendID]Backend, len(backends))}
	for _, b := range backends {
		if _, exists := r.byID[b.ID()]; exists {
			return nil, fmt.Errorf("duplicate backend id %q", b.ID())
		}
		r.byID[b.ID()] = b
		r.ordered = append(r.ordered, b)
	}
	return r, nil
}

// Get returns the backend with the given ID.
func (r *Registry) Get(id arena.BackendID) (Backend, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// IDs returns every registered backend ID in registration order.
func (r *Registry) IDs() []arena.BackendID {
	ids := make([]arena.BackendID, 0, len(r.ordered))
	for _, b := range r.ordered {
		ids = append(ids, b.ID())
	}
	return ids
}
