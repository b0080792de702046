/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package prefs persists per-user, per-category, per-backend win/loss
// counters and exposes them to the routing engine.
package prefs

import (
	"context"

	"github.com/promptarena/arena/arena"
)

// Store is the preference counter store.
//
// RecordOutcome must be atomic per row: concurrent rounds from the same
// user may record outcomes at the same time, and counters must not lose
// updates. Counters only ever increase; deletion is an account-lifecycle
// concern outside this core.
type Store interface {
	// RecordOutcome increments total for every participant of a judged
	// round, and wins for the winner. The winner must be among the
	// participants.
	RecordOutcome(ctx context.Context, userID string, category arena.Category, participants []arena.BackendID, winner arena.BackendID) error

	// Stats returns all counter rows for (userID, category). Order is
	// unspecified; missing rows simply do not appear.
	Stats(ctx context.Context, userID string, category arena.Category) ([]arena.Stat, error)

	// Close releases the store's resources.
	Close() error
}
