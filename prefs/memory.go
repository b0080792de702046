/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package prefs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/promptarena/arena/arena"
)

// MemoryStore implements Store in process memory. It exists for tests and
// for anonymous sessions that never persist preferences; a single mutex
// stands in for the database's per-row atomic upsert.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[memoryKey]*arena.Stat
}

type memoryKey struct {
	user     string
	category arena.Category
	backend  arena.BackendID
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[memoryKey]*arena.Stat)}
}

// RecordOutcome implements Store.
func (m *MemoryStore) RecordOutcome(_ context.Context, userID string, category arena.Category, participants []arena.BackendID, winner arena.BackendID) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if len(participants) == 0 {
		return errors.New("at least one participant is required")
	}

	won := false
	for _, id := range participants {
		if id == winner {
			won = true
			break
		}
	}
	if !won {
		return fmt.Errorf("winner %q is not among participants", winner)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range participants {
		key := memoryKey{user: userID, category: category, backend: id}
		stat, ok := m.rows[key]
		if !ok {
			stat = &arena.Stat{Backend: id}
			m.rows[key] = stat
		}
		stat.Total++
		if id == winner {
			stat.Wins++
		}
	}
	return nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context, userID string, category arena.Category) ([]arena.Stat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats []arena.Stat
	for key, stat := range m.rows {
		if key.user == userID && key.category == category {
			stats = append(stats, *stat)
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Backend < stats[j].Backend })
	return stats, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
