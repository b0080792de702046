/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package routing turns stored preference counters into a recommended
// backend for a task category. Routing is read-only and idempotent; it
// never writes to the preference store.
package routing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/chainguard-dev/clog"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/prefs"
)

// Config holds the routing constants. The thresholds are product-tuned,
// not derived from a statistical test, so they stay configurable.
type Config struct {
	// MinRounds is how many recorded rounds a user needs in a category
	// before stored preferences are trusted over the defaults.
	MinRounds int

	// AnonymousConfidence is the default confidence for callers with no
	// identity; DefaultConfidence applies to identified users with
	// insufficient history.
	AnonymousConfidence int
	DefaultConfidence   int

	// ConfidencePerRound scales the selected backend's total rounds into
	// base confidence, capped at BaseCap before boosts.
	ConfidencePerRound int
	BaseCap            int

	// WideGapBoost applies when the win-rate lead over the runner-up
	// exceeds WideGapPoints percentage points; NarrowGapBoost when it
	// exceeds NarrowGapPoints. MaxConfidence caps the final value.
	WideGapPoints   float64
	WideGapBoost    int
	NarrowGapPoints float64
	NarrowGapBoost  int
	MaxConfidence   int

	// Defaults maps each category to the backend recommended before any
	// history exists.
	Defaults map[arena.Category]arena.BackendID
}

// DefaultConfig returns the shipped routing constants.
func DefaultConfig() Config {
	return Config{
		MinRounds:           3,
		AnonymousConfidence: 40,
		DefaultConfidence:   50,
		ConfidencePerRound:  10,
		BaseCap:             80,
		WideGapPoints:       20,
		WideGapBoost:        15,
		NarrowGapPoints:     10,
		NarrowGapBoost:      10,
		MaxConfidence:       95,
		Defaults: map[arena.Category]arena.BackendID{
			arena.CategoryWriting:  "claude",
			arena.CategoryCode:     "gpt",
			arena.CategoryResearch: "gemini",
			arena.CategoryAnalysis: "claude",
			arena.CategoryGeneral:  "gpt",
		},
	}
}

// Engine computes routing decisions from the preference store.
type Engine struct {
	store prefs.Store
	cfg   Config
}

// NewEngine returns an Engine reading from store. A zero-valued cfg field
// set is replaced by DefaultConfig.
func NewEngine(store prefs.Store, cfg Config) *Engine {
	if cfg.Defaults == nil {
		cfg = DefaultConfig()
	}
	return &Engine{store: store, cfg: cfg}
}

// Route returns the recommended backend for (userID, category).
// An empty userID means the caller is anonymous.
func (e *Engine) Route(ctx context.Context, userID string, category arena.Category) (arena.Decision, error) {
	log := clog.FromContext(ctx)

	if userID == "" {
		return e.defaultDecision(category, e.cfg.AnonymousConfidence,
			"no user identity; using the provisional default for this category"), nil
	}

	stats, err := e.store.Stats(ctx, userID, category)
	if err != nil {
		return arena.Decision{}, fmt.Errorf("load preference stats: %w", err)
	}

	total := 0
	for _, stat := range stats {
		// Every participant's total counts the same rounds, so the
		// category round count is the max total, not the sum.
		if stat.Total > total {
			total = stat.Total
		}
	}
	if total < e.cfg.MinRounds {
		return e.defaultDecision(category, e.cfg.DefaultConfidence,
			fmt.Sprintf("only %d recorded rounds for this category; the default is provisional", total)), nil
	}

	// Highest win-rate wins; ties break toward the larger sample.
	sort.Slice(stats, func(i, j int) bool {
		ri, rj := stats[i].WinRate(), stats[j].WinRate()
		if ri != rj {
			return ri > rj
		}
		return stats[i].Total > stats[j].Total
	})

	best := stats[0]
	confidence := min(best.Total*e.cfg.ConfidencePerRound, e.cfg.BaseCap)

	if len(stats) > 1 {
		gap := (best.WinRate() - stats[1].WinRate()) * 100
		switch {
		case gap > e.cfg.WideGapPoints:
			confidence += e.cfg.WideGapBoost
		case gap > e.cfg.NarrowGapPoints:
			confidence += e.cfg.NarrowGapBoost
		}
	}
	confidence = min(confidence, e.cfg.MaxConfidence)

	decision := arena.Decision{
		Backend:    best.Backend,
		Confidence: confidence,
		Category:   category,
		Reason: fmt.Sprintf("%s wins %d%% of your %s rounds",
			best.Backend, int(math.Round(best.WinRate()*100)), category),
	}

	log.With("user", userID).
		With("category", category).
		With("backend", decision.Backend).
		With("confidence", decision.Confidence).
		Debug("Computed routing decision")

	return decision, nil
}

func (e *Engine) defaultDecision(category arena.Category, confidence int, reason string) arena.Decision {
	backend, ok := e.cfg.Defaults[category]
	if !ok {
		backend = e.cfg.Defaults[arena.CategoryGeneral]
	}
	return arena.Decision{
		Backend:    backend,
		Confidence: confidence,
		Category:   category,
		Reason:     reason,
	}
}
