/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package orchestrate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/providers"
)

// fakeBackend replays scripted chunks with optional pacing and a final
// error, standing in for a provider stream.
type fakeBackend struct {
	id     arena.BackendID
	chunks []string
	delay  time.Duration
	err    error
	// hang blocks until the context is cancelled, for timeout tests.
	hang bool
}

func (f *fakeBackend) ID() arena.BackendID { return f.id }
func (f *fakeBackend) Model() string       { return "fake-model" }

func (f *fakeBackend) Stream(ctx context.Context, _ providers.Request, emit func(string)) (providers.Usage, error) {
	if f.hang {
		<-ctx.Done()
		return providers.Usage{}, ctx.Err()
	}
	for _, chunk := range f.chunks {
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return providers.Usage{}, ctx.Err()
			}
		}
		emit(chunk)
	}
	if f.err != nil {
		return providers.Usage{}, f.err
	}
	return providers.Usage{InputTokens: 10, OutputTokens: 20}, nil
}

func newTestOrchestrator(t *testing.T, opts []Option, backends ...providers.Backend) *Orchestrator {
	t.Helper()
	reg, err := providers.NewRegistry(backends...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return New(reg, opts...)
}

// drain consumes every event until the round finishes, grouping chunk
// payloads and terminal events by backend.
func drain(t *testing.T, round *Round) (chunks map[arena.BackendID]string, terminals map[arena.BackendID]EventType) {
	t.Helper()
	chunks = make(map[arena.BackendID]string)
	terminals = make(map[arena.BackendID]EventType)
	for ev := range round.Events() {
		switch ev.Type {
		case EventChunk:
			chunks[ev.Backend] += ev.Chunk
		case EventComplete, EventError:
			if prev, dup := terminals[ev.Backend]; dup {
				t.Errorf("backend %s emitted two terminal events: %s then %s", ev.Backend, prev, ev.Type)
			}
			terminals[ev.Backend] = ev.Type
		}
	}
	return chunks, terminals
}

func TestStartRoundMixedOutcomes(t *testing.T) {
	orch := newTestOrchestrator(t, nil,
		&fakeBackend{id: "a", err: errors.New("provider exploded")},
		&fakeBackend{id: "b", chunks: []string{"b1 ", "b2"}, delay: 5 * time.Millisecond},
		&fakeBackend{id: "c", chunks: []string{"c1 ", "c2 ", "c3"}, delay: 10 * time.Millisecond},
	)

	round, err := orch.StartRound(context.Background(), "race", nil, []arena.BackendID{"a", "b", "c"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	chunks, terminals := drain(t, round)
	<-round.Done()

	if !round.AllTerminal() {
		t.Error("AllTerminal() = false after Done closed")
	}

	wantTerminals := map[arena.BackendID]EventType{"a": EventError, "b": EventComplete, "c": EventComplete}
	if diff := cmp.Diff(wantTerminals, terminals); diff != "" {
		t.Errorf("terminal events mismatch (-want +got):\n%s", diff)
	}

	if got := chunks["c"]; got != "c1 c2 c3" {
		t.Errorf("backend c chunks arrived out of order: %q", got)
	}

	// Judging input excludes the errored backend.
	completed := round.Completed()
	want := map[arena.BackendID]string{"b": "b1 b2", "c": "c1 c2 c3"}
	if diff := cmp.Diff(want, completed); diff != "" {
		t.Errorf("Completed() mismatch (-want +got):\n%s", diff)
	}
}

func TestStartRoundStatusNeverReverts(t *testing.T) {
	orch := newTestOrchestrator(t, nil,
		&fakeBackend{id: "a", chunks: []string{"x", "y"}},
	)

	round, err := orch.StartRound(context.Background(), "p", nil, []arena.BackendID{"a"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	ranks := map[arena.Status]int{
		arena.StatusIdle:      0,
		arena.StatusStreaming: 1,
		arena.StatusComplete:  2,
		arena.StatusError:     2,
	}
	last := -1
	for range round.Events() {
		status := round.Responses()[0].Status
		if ranks[status] < last {
			t.Fatalf("status reverted to %s", status)
		}
		last = ranks[status]
	}
	<-round.Done()

	if got := round.Responses()[0].Status; got != arena.StatusComplete {
		t.Errorf("final status = %s, want complete", got)
	}
}

func TestStartRoundRecordsLatency(t *testing.T) {
	orch := newTestOrchestrator(t, nil,
		&fakeBackend{id: "a", chunks: []string{"x", "y"}, delay: 5 * time.Millisecond},
	)

	round, err := orch.StartRound(context.Background(), "p", nil, []arena.BackendID{"a"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	drain(t, round)
	<-round.Done()

	resp := round.Responses()[0]
	if resp.Latency.FirstToken <= 0 {
		t.Error("time-to-first-token not recorded")
	}
	if resp.Latency.Total < resp.Latency.FirstToken {
		t.Errorf("total %s below first-token %s", resp.Latency.Total, resp.Latency.FirstToken)
	}
}

func TestStartRoundTimeout(t *testing.T) {
	orch := newTestOrchestrator(t,
		[]Option{WithStreamTimeout(20 * time.Millisecond)},
		&fakeBackend{id: "hung", hang: true},
		&fakeBackend{id: "ok", chunks: []string{"fine"}},
	)

	round, err := orch.StartRound(context.Background(), "p", nil, []arena.BackendID{"hung", "ok"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	_, terminals := drain(t, round)
	<-round.Done()

	if terminals["hung"] != EventError {
		t.Errorf("hung backend terminal = %s, want error", terminals["hung"])
	}
	if terminals["ok"] != EventComplete {
		t.Errorf("ok backend terminal = %s, want complete", terminals["ok"])
	}

	for _, resp := range round.Responses() {
		if resp.Backend != "hung" {
			continue
		}
		if !strings.Contains(resp.Err, "timeout") {
			t.Errorf("hung backend error %q should mention timeout", resp.Err)
		}
	}
}

func TestStartRoundCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	orch := newTestOrchestrator(t, nil,
		&fakeBackend{id: "hung", hang: true},
	)

	round, err := orch.StartRound(ctx, "p", nil, []arena.BackendID{"hung"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	cancel()

	select {
	case <-round.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("round did not finish promptly after cancellation")
	}
}

func TestStartRoundFreshResponsesPerRound(t *testing.T) {
	orch := newTestOrchestrator(t, nil,
		&fakeBackend{id: "a", chunks: []string{"hello"}},
	)

	first, err := orch.StartRound(context.Background(), "one", nil, []arena.BackendID{"a"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	drain(t, first)
	<-first.Done()

	second, err := orch.StartRound(context.Background(), "two", nil, []arena.BackendID{"a"})
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	drain(t, second)
	<-second.Done()

	if first.ID == second.ID {
		t.Error("rounds share an ID")
	}
	if got := second.Responses()[0].Content; got != "hello" {
		t.Errorf("second round content = %q, want fresh accumulation", got)
	}
}

func TestStartRoundValidation(t *testing.T) {
	orch := newTestOrchestrator(t, nil, &fakeBackend{id: "a"})

	if _, err := orch.StartRound(context.Background(), "p", nil, nil); !errors.Is(err, ErrNoBackends) {
		t.Errorf("empty backends: err = %v, want ErrNoBackends", err)
	}
	if _, err := orch.StartRound(context.Background(), "p", nil, []arena.BackendID{"missing"}); err == nil {
		t.Error("unknown backend should fail")
	}
	if _, err := orch.StartRound(context.Background(), "p", nil, []arena.BackendID{"a", "a"}); err == nil {
		t.Error("duplicate backend should fail")
	}
}
