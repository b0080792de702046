/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/clog"

	"github.com/promptarena/arena/arena"
)

// session accumulates the tool calls of one judging pass.
type session struct {
	participants []arena.BackendID
	scores       map[arena.BackendID][]arena.ScoreEntry
	verdict      *arena.Verdict
	onEvent      func(Event)
	onToolCall   func(tool string)
}

func newSession(participants []arena.BackendID, onEvent func(Event), onToolCall func(string)) *session {
	return &session{
		participants: participants,
		scores:       make(map[arena.BackendID][]arena.ScoreEntry),
		onEvent:      onEvent,
		onToolCall:   onToolCall,
	}
}

func (s *session) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

func (s *session) isParticipant(id arena.BackendID) bool {
	for _, p := range s.participants {
		if p == id {
			return true
		}
	}
	return false
}

// handleToolCall parses one completed tool invocation from the judge
// stream and folds it into the session.
func (s *session) handleToolCall(ctx context.Context, name, rawJSON string) {
	log := clog.FromContext(ctx)

	if s.onToolCall != nil {
		s.onToolCall(name)
	}
	s.emit(Event{Type: EventToolCall, Tool: name})

	switch name {
	case scoreToolName:
		var args scoreArgs
		if err := json.Unmarshal([]byte(rawJSON), &args); err != nil {
			log.With("tool", name).With("error", err).Warn("Malformed score payload, skipping")
			return
		}
		backend := arena.BackendID(args.Backend)
		if !s.isParticipant(backend) {
			log.With("backend", args.Backend).Warn("Score for unknown backend, skipping")
			return
		}
		entry := arena.ScoreEntry{
			Backend:   backend,
			Criterion: args.Criterion,
			Score:     args.Score,
			Rationale: args.Rationale,
		}
		s.scores[backend] = append(s.scores[backend], entry)
		s.emit(Event{Type: EventScoring, Score: &entry})

	case verdictToolName:
		if s.verdict != nil {
			log.Warn("Duplicate verdict call, keeping the first")
			return
		}
		var args verdictArgs
		if err := json.Unmarshal([]byte(rawJSON), &args); err != nil {
			log.With("tool", name).With("error", err).Warn("Malformed verdict payload")
			return
		}
		s.verdict = &arena.Verdict{
			Winner:    arena.BackendID(args.Winner),
			Text:      args.Verdict,
			Highlight: args.Highlight,
		}
		s.emit(Event{Type: EventVerdict, Verdict: s.verdict})

	default:
		log.With("tool", name).Warn("Unknown tool requested by judge")
	}
}

// finalize closes out the pass once the judge stream has ended. tailText
// is any free text the judge emitted, used to salvage a missing verdict.
func (s *session) finalize(ctx context.Context, tailText string) (*Result, error) {
	log := clog.FromContext(ctx)

	if s.verdict == nil {
		if v, ok := salvageVerdict(tailText); ok {
			log.Info("Salvaged verdict from judge text output")
			s.verdict = v
			s.emit(Event{Type: EventVerdict, Verdict: v})
		}
	}
	if s.verdict == nil {
		return nil, ErrNoVerdict
	}

	res := &Result{Scores: s.scores, Verdict: *s.verdict}
	if !s.isParticipant(s.verdict.Winner) {
		err := &IntegrityError{Winner: s.verdict.Winner, Participants: s.participants}
		log.With("winner", s.verdict.Winner).Error("Verdict winner failed integrity check")
		return res, err
	}
	return res, nil
}
