/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiprovider streams completions from OpenAI's chat API.
package openaiprovider

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/providers"
)

// Provider implements providers.Backend on the OpenAI SDK.
type Provider struct {
	client openai.Client
	id     arena.BackendID
	model  string
}

// Option configures a Provider.
type Option func(*Provider)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// New creates a GPT-backed provider.
func New(id arena.BackendID, apiKey string, opts ...Option) *Provider {
	p := &Provider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		id:     id,
		model:  "gpt-4o",
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
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, turn := range turns {
		if turn.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(req.MaxTokens),
		Temperature:         openai.Float(req.Temperature),
	}

	log.With("backend", p.id).With("model", p.model).Debug("Opening OpenAI stream")

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			emit(chunk.Choices[0].Delta.Content)
		}
	}
	if err := stream.Err(); err != nil {
		return providers.Usage{}, fmt.Errorf("stream OpenAI response: %w", err)
	}

	return providers.Usage{
		InputTokens:  acc.Usage.PromptTokens,
		OutputTokens: acc.Usage.CompletionTokens,
	}, nil
}
