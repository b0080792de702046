/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads arena settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Arena holds every knob the core reads from the environment. The
// surrounding application owns any richer configuration surface.
type Arena struct {
	// Provider credentials. A backend with an empty key is simply not
	// registered.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`

	// Per-provider model overrides.
	ClaudeModel string `env:"ARENA_CLAUDE_MODEL, default=claude-sonnet-4-5"`
	GPTModel    string `env:"ARENA_GPT_MODEL, default=gpt-4o"`
	GeminiModel string `env:"ARENA_GEMINI_MODEL, default=gemini-2.5-flash"`

	// JudgeModel is the model driving the scoring protocol.
	JudgeModel string `env:"ARENA_JUDGE_MODEL, default=claude-sonnet-4-5"`

	// StreamTimeout bounds each backend stream so one unresponsive
	// provider cannot stall a round.
	StreamTimeout time.Duration `env:"ARENA_STREAM_TIMEOUT, default=2m"`

	// MaxTokens and Temperature apply to every arena backend stream.
	MaxTokens   int64   `env:"ARENA_MAX_TOKENS, default=2048"`
	Temperature float64 `env:"ARENA_TEMPERATURE, default=0.7"`

	// StorePath locates the preference SQLite database.
	StorePath string `env:"ARENA_STORE_PATH, default=arena-prefs.db"`
}

// Load reads the arena configuration from the process environment.
func Load(ctx context.Context) (*Arena, error) {
	var cfg Arena
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}
