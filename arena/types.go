/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package arena

import (
	"fmt"
	"time"
)

// BackendID identifies a language-model provider backend.
type BackendID string

// Category is the task classification used to scope preference learning.
type Category string

const (
	CategoryWriting  Category = "writing"
	CategoryCode     Category = "code"
	CategoryResearch Category = "research"
	CategoryAnalysis Category = "analysis"
	CategoryGeneral  Category = "general"
)

// Categories lists every category in tie-break priority order.
// Earlier entries win score ties during classification.
var Categories = []Category{
	CategoryWriting,
	CategoryCode,
	CategoryResearch,
	CategoryAnalysis,
	CategoryGeneral,
}

// Kind selects the judging rubric variant applied to a round.
type Kind string

const (
	KindDebate  Kind = "debate"
	KindCode    Kind = "code"
	KindWriting Kind = "writing"
)

// Status tracks the lifecycle of a single backend's response within a round.
// Transitions only move forward: idle -> streaming -> {complete|error}.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// rank orders statuses along the permitted transition path.
func (s Status) rank() int {
	switch s {
	case StatusIdle:
		return 0
	case StatusStreaming:
		return 1
	case StatusComplete, StatusError:
		return 2
	}
	return -1
}

// CanTransition reports whether a response may move from s to next.
func (s Status) CanTransition(next Status) bool {
	return next.rank() > s.rank()
}

// Latency captures per-backend timing for one round.
type Latency struct {
	// FirstToken is the time from request start to the first content fragment.
	FirstToken time.Duration `json:"first_token"`
	// Total is the time from request start to stream termination.
	Total time.Duration `json:"total"`
}

// Response is one backend's answer within a round.
type Response struct {
	Backend BackendID `json:"backend"`
	Content string    `json:"content"`
	Status  Status    `json:"status"`
	Latency Latency   `json:"latency"`
	// Err carries the failure detail when Status is error.
	Err string `json:"error,omitempty"`
}

// PriorRound is one earlier prompt and the responses it produced, carried
// as conversational context when the user continues a debate.
type PriorRound struct {
	Prompt    string               `json:"prompt"`
	Responses map[BackendID]string `json:"responses"`
}

// ScoreEntry is one criterion score for one backend, produced incrementally
// by the judge. Immutable once emitted.
type ScoreEntry struct {
	Backend   BackendID `json:"backend"`
	Criterion string    `json:"criterion"`
	Score     float64   `json:"score"`
	Rationale string    `json:"rationale"`
}

// Verdict is the judge's final winner selection for one round.
type Verdict struct {
	Winner    BackendID `json:"winner"`
	Text      string    `json:"verdict"`
	Highlight string    `json:"highlight,omitempty"`
}

// Validate checks the verdict's winner against the participating backends.
func (v Verdict) Validate(participants []BackendID) error {
	for _, id := range participants {
		if id == v.Winner {
			return nil
		}
	}
	return fmt.Errorf("verdict winner %q is not among participants %v", v.Winner, participants)
}

// Decision is the routing engine's recommendation for a category.
// It is derived on demand from preference stats and never persisted.
type Decision struct {
	Backend    BackendID `json:"backend"`
	Reason     string    `json:"reason"`
	Confidence int       `json:"confidence"`
	Category   Category  `json:"category"`
}

// Stat is one preference counter row: how often a backend won for a
// (user, category) pair, out of how many judged rounds it took part in.
type Stat struct {
	Backend BackendID `json:"backend"`
	Wins    int       `json:"wins"`
	Total   int       `json:"total"`
}

// WinRate returns wins/total, or zero for an empty row.
func (s Stat) WinRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Total)
}
