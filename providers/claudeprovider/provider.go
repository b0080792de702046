/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeprovider streams completions from Anthropic's Messages API.
package claudeprovider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/providers"
)

// Provider implements providers.Backend on the Anthropic SDK.
type Provider struct {
	client anthropic.Client
	id     arena.BackendID
	model  string
}

// Option configures a Provider.
type Option func(*Provider)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// New creates a Claude-backed provider.
func New(id arena.BackendID, apiKey string, opts ...Option) *Provider {
	p := &Provider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		id:     id,
		model:  "claude-sonnet-4-5",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID implements providers.Backend.
func (p *Provider) ID() arena.BackendID { return p.id }

// Model implements providers.Backend.
func (p *Provider) Model() string { return p.model }

// Stream implements providers.Backend.
func (p *Provider) Stream(ctx context.Context, req providers.Request, emit func(chunk string)) (providers.Usage, error) {
	log := clog.FromContext(ctx)

	turns := req.TurnsFor(p.id)
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, turn := range turns {
		block := anthropic.NewTextBlock(turn.Text)
		if turn.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: req.MaxTokens,
		Messages:  messages,
	}
	params.Temperature = anthropic.Float(req.Temperature)
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	log.With("backend", p.id).With("model", p.model).Debug("Opening Claude stream")

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var msg anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return providers.Usage{}, fmt.Errorf("accumulate stream event: %w", err)
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				emit(text.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return providers.Usage{}, fmt.Errorf("stream Claude response: %w", err)
	}

	return providers.Usage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}, nil
}
