/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package judge drives a tool-call scoring protocol against a judging
// backend and turns the stream into scores and a verdict.
//
// The judge model is instructed to emit one score_response call per
// (backend, criterion) pair and then exactly one declare_verdict call.
// Intermediate tool calls are surfaced to the caller as they arrive; the
// engine accumulates them and validates the final verdict against the
// participating backends.
package judge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/metrics"
	"github.com/promptarena/arena/result"
)

var (
	// ErrNoVerdict reports that the judge stream ended without a usable
	// verdict call. The round stays visible without a verdict and the
	// caller may retry judging.
	ErrNoVerdict = errors.New("no verdict produced")

	// ErrJudgingInProgress reports a second Judge call while one is
	// already in flight for this round.
	ErrJudgingInProgress = errors.New("judging already in progress")

	// ErrAlreadyJudged reports a Judge call after the round completed,
	// guaranteeing at most one verdict per round.
	ErrAlreadyJudged = errors.New("round already judged")

	// ErrNoResponses reports a judging request with zero completed
	// responses; judging is short-circuited rather than invoked empty.
	ErrNoResponses = errors.New("no completed responses to judge")
)

// IntegrityError reports a verdict whose winner is not a participating
// backend. The verdict is still returned for the caller to flag.
type IntegrityError struct {
	Winner       arena.BackendID
	Participants []arena.BackendID
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("verdict winner %q is not among participants %v", e.Winner, e.Participants)
}

// State is the engine's judging state.
type State int32

const (
	StateNotStarted State = iota
	StateJudging
	StateComplete
)

// EventType classifies judge stream events.
type EventType string

const (
	// EventToolCall reports a raw tool invocation observed on the stream.
	EventToolCall EventType = "toolCall"
	// EventScoring delivers one parsed score entry.
	EventScoring EventType = "scoring"
	// EventVerdict delivers the verdict as soon as it is observed.
	EventVerdict EventType = "verdict"
	// EventComplete marks the end of a successful judging pass.
	EventComplete EventType = "complete"
)

// Event is one progressive update from a judging pass.
type Event struct {
	Type    EventType
	Tool    string
	Score   *arena.ScoreEntry
	Verdict *arena.Verdict
}

// Request carries everything a judging pass needs.
type Request struct {
	Prompt string
	// Responses maps each completed backend to its content; errored
	// backends must already be excluded.
	Responses map[arena.BackendID]string
	Category  arena.Category
	Kind      arena.Kind
}

// Result is the accumulated outcome of a judging pass.
type Result struct {
	Scores  map[arena.BackendID][]arena.ScoreEntry
	Verdict arena.Verdict
}

// Engine judges at most one round. Create a fresh Engine per round; the
// state machine rejects overlapping or repeated passes.
type Engine struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	metrics   *metrics.Arena
	state     atomic.Int32
}

// Option configures an Engine.
type Option func(*Engine)

// WithModel overrides the judging model.
func WithModel(model string) Option {
	return func(e *Engine) { e.model = model }
}

// WithMaxTokens sets the judging completion budget.
func WithMaxTokens(n int64) Option {
	return func(e *Engine) { e.maxTokens = n }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Arena) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates a judge engine on the given Anthropic client.
func New(client anthropic.Client, opts ...Option) *Engine {
	e := &Engine{
		client:    client,
		model:     "claude-sonnet-4-5",
		maxTokens: 4096,
		metrics:   metrics.New("promptarena.arena"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the engine's current judging state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Judge runs one judging pass. onEvent, if non-nil, receives intermediate
// protocol events as they arrive on the judge stream.
//
// On ErrNoVerdict or a stream failure the engine returns to not-started so
// the caller may retry. On an IntegrityError the Result still carries the
// flagged verdict.
func (e *Engine) Judge(ctx context.Context, req Request, onEvent func(Event)) (*Result, error) {
	if len(req.Responses) == 0 {
		return nil, ErrNoResponses
	}

	switch {
	case e.state.CompareAndSwap(int32(StateNotStarted), int32(StateJudging)):
		// proceed
	case e.State() == StateComplete:
		return nil, ErrAlreadyJudged
	default:
		return nil, ErrJudgingInProgress
	}

	res, err := e.run(ctx, req, onEvent)
	if err != nil {
		// Failed passes may be retried by the caller.
		e.state.Store(int32(StateNotStarted))
		return res, err
	}

	e.state.Store(int32(StateComplete))
	if onEvent != nil {
		onEvent(Event{Type: EventComplete})
	}
	return res, nil
}

func (e *Engine) run(ctx context.Context, req Request, onEvent func(Event)) (*Result, error) {
	log := clog.FromContext(ctx)

	participants := participantIDs(req.Responses)
	prompt, err := buildPrompt(req, participants)
	if err != nil {
		return nil, fmt.Errorf("build judge prompt: %w", err)
	}

	tools, err := protocolTools()
	if err != nil {
		return nil, fmt.Errorf("build judge tools: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: tools,
	}

	log.With("model", e.model).
		With("participants", len(participants)).
		Info("Starting judging pass")

	sess := newSession(participants, onEvent, func(tool string) {
		e.metrics.RecordJudgeToolCall(ctx, tool)
	})

	stream := e.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		inTool   bool
		toolName string
		toolJSON strings.Builder
		tailText strings.Builder
	)

	for stream.Next() {
		switch ev := stream.Current().AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if tu, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				inTool = true
				toolName = tu.Name
				toolJSON.Reset()
			}
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.InputJSONDelta:
				if inTool {
					toolJSON.WriteString(delta.PartialJSON)
				}
			case anthropic.TextDelta:
				tailText.WriteString(delta.Text)
			}
		case anthropic.ContentBlockStopEvent:
			if inTool {
				sess.handleToolCall(ctx, toolName, toolJSON.String())
				inTool = false
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("stream judge response: %w", err)
	}

	return sess.finalize(ctx, tailText.String())
}

// participantIDs returns the responding backends in a stable order.
func participantIDs(responses map[arena.BackendID]string) []arena.BackendID {
	ids := make([]arena.BackendID, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// salvageVerdict is the last resort when the judge answered with text
// instead of a declare_verdict call: look for a verdict-shaped JSON
// object in the trailing text.
func salvageVerdict(text string) (*arena.Verdict, bool) {
	if !strings.Contains(text, "winner") {
		return nil, false
	}
	parsed, err := result.Extract[verdictArgs](text)
	if err != nil || parsed.Winner == "" {
		return nil, false
	}
	return &arena.Verdict{
		Winner:    arena.BackendID(parsed.Winner),
		Text:      parsed.Verdict,
		Highlight: parsed.Highlight,
	}, true
}
