/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package outcome feeds judged rounds back into the preference store.
//
// Recording is best-effort telemetry: a store failure is logged and
// swallowed, never propagated into the round's outcome.
package outcome

import (
	"context"
	"sort"

	"github.com/chainguard-dev/clog"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/classify"
	"github.com/promptarena/arena/prefs"
)

// Recorder updates preference counters from finished rounds.
type Recorder struct {
	store prefs.Store
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store prefs.Store) *Recorder {
	return &Recorder{store: store}
}

// Record applies one judged round to the user's preference counters.
// Call it exactly once per (responses, verdict) pair, after judging
// completes.
//
// The task category is re-derived from the original prompt rather than
// trusted from a cache. Every backend that produced a completed response
// gets its total bumped; the verdict winner additionally gets a win. All
// failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, userID, prompt string, responses map[arena.BackendID]string, verdict arena.Verdict) {
	log := clog.FromContext(ctx)

	if userID == "" {
		log.Debug("Anonymous round, skipping preference update")
		return
	}
	if len(responses) == 0 {
		log.Warn("Judged round with no responses, skipping preference update")
		return
	}

	participants := make([]arena.BackendID, 0, len(responses))
	for id := range responses {
		participants = append(participants, id)
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i] < participants[j] })

	if err := verdict.Validate(participants); err != nil {
		log.With("error", err).Warn("Verdict failed validation, skipping preference update")
		return
	}

	category := classify.Classify(prompt)

	if err := r.store.RecordOutcome(ctx, userID, category, participants, verdict.Winner); err != nil {
		log.With("user", userID).
			With("category", category).
			With("error", err).
			Warn("Preference update failed, dropping outcome")
		return
	}

	log.With("user", userID).
		With("category", category).
		With("winner", verdict.Winner).
		With("participants", len(participants)).
		Debug("Recorded round outcome")
}
