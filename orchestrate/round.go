/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package orchestrate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promptarena/arena/arena"
)

// Round is one prompt submission and the responses it produces. A new
// round allocates a fresh slot per backend; slots are never reused across
// rounds.
type Round struct {
	ID      string
	Prompt  string
	History []arena.PriorRound

	slots []*slot
	wg    sync.WaitGroup

	events chan Event
	done   chan struct{}
}

func newRound(prompt string, history []arena.PriorRound, backendIDs []arena.BackendID) *Round {
	round := &Round{
		ID:      uuid.NewString(),
		Prompt:  prompt,
		History: history,
		slots:   make([]*slot, len(backendIDs)),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
	for i, id := range backendIDs {
		round.slots[i] = &slot{resp: arena.Response{Backend: id, Status: arena.StatusIdle}}
	}
	return round
}

// Events streams progressive updates. The channel closes once every
// backend is terminal.
func (r *Round) Events() <-chan Event { return r.events }

// Done closes when every backend has reached complete or error.
func (r *Round) Done() <-chan struct{} { return r.done }

// AllTerminal reports whether every backend has finished, successfully or
// not. It is the trigger condition for downstream judging.
func (r *Round) AllTerminal() bool {
	for _, s := range r.slots {
		if !s.snapshot().Status.Terminal() {
			return false
		}
	}
	return true
}

// Responses returns a snapshot of every backend's response, in the order
// the backends were requested.
func (r *Round) Responses() []arena.Response {
	out := make([]arena.Response, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.snapshot()
	}
	return out
}

// Completed returns the content of successfully completed backends only,
// the judge engine's input. Errored backends are excluded.
func (r *Round) Completed() map[arena.BackendID]string {
	out := make(map[arena.BackendID]string)
	for _, s := range r.slots {
		if resp := s.snapshot(); resp.Status == arena.StatusComplete {
			out[resp.Backend] = resp.Content
		}
	}
	return out
}

// emit delivers an event unless the caller has abandoned the round.
func (r *Round) emit(ctx context.Context, ev Event) {
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

// slot is one backend's mutable response record. Only that backend's
// goroutine writes it; the mutex makes caller snapshots safe.
type slot struct {
	mu       sync.Mutex
	resp     arena.Response
	gotFirst bool
}

func (s *slot) snapshot() arena.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resp
}

func (s *slot) setStatus(next arena.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resp.Status.CanTransition(next) {
		s.resp.Status = next
	}
}

// appendChunk accumulates a content fragment and reports whether it was
// the first one, recording time-to-first-token when it is.
func (s *slot) appendChunk(chunk string, elapsed time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resp.Content += chunk
	if s.gotFirst {
		return false
	}
	s.gotFirst = true
	s.resp.Latency.FirstToken = elapsed
	return true
}

func (s *slot) complete(total time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resp.Status.CanTransition(arena.StatusComplete) {
		s.resp.Status = arena.StatusComplete
		s.resp.Latency.Total = total
	}
}

func (s *slot) fail(reason string, total time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resp.Status.CanTransition(arena.StatusError) {
		s.resp.Status = arena.StatusError
		s.resp.Err = reason
		s.resp.Latency.Total = total
	}
}
