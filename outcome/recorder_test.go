/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package outcome

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/prefs"
)

func TestRecordUpdatesCounters(t *testing.T) {
	store := prefs.NewMemoryStore()
	rec := NewRecorder(store)
	ctx := context.Background()

	responses := map[arena.BackendID]string{
		"gpt":    "def add(a, b): return a + b",
		"claude": "here is the function",
	}
	rec.Record(ctx, "user-1", "Debug this Python function", responses,
		arena.Verdict{Winner: "claude", Text: "clearer fix"})

	// The category is re-derived from the prompt, so the counters land
	// under code.
	stats, err := store.Stats(ctx, "user-1", arena.CategoryCode)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := []arena.Stat{
		{Backend: "claude", Wins: 1, Total: 1},
		{Backend: "gpt", Wins: 0, Total: 1},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordSkipsAnonymous(t *testing.T) {
	store := prefs.NewMemoryStore()
	rec := NewRecorder(store)
	ctx := context.Background()

	rec.Record(ctx, "", "prompt", map[arena.BackendID]string{"gpt": "x"},
		arena.Verdict{Winner: "gpt"})

	stats, err := store.Stats(ctx, "", arena.CategoryGeneral)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("anonymous round should record nothing, got %v", stats)
	}
}

func TestRecordSkipsInvalidWinner(t *testing.T) {
	store := prefs.NewMemoryStore()
	rec := NewRecorder(store)
	ctx := context.Background()

	rec.Record(ctx, "user-1", "prompt", map[arena.BackendID]string{"gpt": "x"},
		arena.Verdict{Winner: "stranger"})

	stats, err := store.Stats(ctx, "user-1", arena.CategoryGeneral)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("invalid winner should record nothing, got %v", stats)
	}
}

// failingStore always errors, proving Record swallows store failures.
type failingStore struct{}

func (failingStore) RecordOutcome(context.Context, string, arena.Category, []arena.BackendID, arena.BackendID) error {
	return errors.New("store down")
}
func (failingStore) Stats(context.Context, string, arena.Category) ([]arena.Stat, error) {
	return nil, errors.New("store down")
}
func (failingStore) Close() error { return nil }

func TestRecordSwallowsStoreFailure(t *testing.T) {
	rec := NewRecorder(failingStore{})
	// Must not panic or propagate.
	rec.Record(context.Background(), "user-1", "prompt",
		map[arena.BackendID]string{"gpt": "x"}, arena.Verdict{Winner: "gpt"})
}
