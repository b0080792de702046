/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry instruments for arena rounds:
// token usage, time-to-first-token, stream outcomes, and judge tool calls.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Arena holds the meter instruments for one process. Instrument creation
// degrades gracefully: a failed instrument is replaced with a no-op so
// metrics problems never break a round.
type Arena struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	firstToken       metric.Float64Histogram
	streamOutcomes   metric.Int64Counter
	judgeToolCalls   metric.Int64Counter
}

// New creates the arena instruments on the named meter.
func New(meterName string) *Arena {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("arena.token.prompt",
		metric.WithDescription("Prompt tokens consumed per backend stream"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt token counter", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("arena.token.completion",
		metric.WithDescription("Completion tokens produced per backend stream"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion token counter", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	firstToken, err := meter.Float64Histogram("arena.stream.first_token",
		metric.WithDescription("Time to first content fragment per backend stream"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create first-token histogram", "error", err, "meter", meterName)
		firstToken = noop.Float64Histogram{}
	}

	streamOutcomes, err := meter.Int64Counter("arena.stream.outcomes",
		metric.WithDescription("Backend stream terminations by status"),
		metric.WithUnit("{streams}"))
	if err != nil {
		slog.Warn("Failed to create stream outcome counter", "error", err, "meter", meterName)
		streamOutcomes = noop.Int64Counter{}
	}

	judgeToolCalls, err := meter.Int64Counter("arena.judge.tool_calls",
		metric.WithDescription("Tool calls observed on the judge stream"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create judge tool call counter", "error", err, "meter", meterName)
		judgeToolCalls = noop.Int64Counter{}
	}

	return &Arena{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		firstToken:       firstToken,
		streamOutcomes:   streamOutcomes,
		judgeToolCalls:   judgeToolCalls,
	}
}

// RecordTokens records token usage for one backend stream.
func (m *Arena) RecordTokens(ctx context.Context, backend, model string, prompt, completion int64) {
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("model", model),
	)
	m.promptTokens.Add(ctx, prompt, attrs)
	m.completionTokens.Add(ctx, completion, attrs)
}

// RecordFirstToken records the time-to-first-token for one backend stream.
func (m *Arena) RecordFirstToken(ctx context.Context, backend string, d time.Duration) {
	m.firstToken.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
	))
}

// RecordStreamOutcome records a stream's terminal status.
func (m *Arena) RecordStreamOutcome(ctx context.Context, backend, status string) {
	m.streamOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}

// RecordJudgeToolCall records one tool call observed on the judge stream.
func (m *Arena) RecordJudgeToolCall(ctx context.Context, tool string) {
	m.judgeToolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
	))
}
