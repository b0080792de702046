/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package geminiprovider streams completions from Google's Gemini API.
package geminiprovider

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/providers"
)

// Provider implements providers.Backend on the Google GenAI SDK.
type Provider struct {
	client *genai.Client
	id     arena.BackendID
	model  string
}

// Option configures a Provider.
type Option func(*Provider)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// New creates a Gemini-backed provider.
func New(ctx context.Context, id arena.BackendID, apiKey string, opts ...Option) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	p := &Provider{
		client: client,
		id:     id,
		model:  "gemini-2.5-flash",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ID implements providers.Backend.
func (p *Provider) ID() arena.BackendID { return p.id }

// Model implements providers.Backend.
func (p *Provider) Model() string { return p.model }

// Stream implements providers.Backend.
func (p *Provider) Stream(ctx context.Context, req providers.Request, emit func(chunk string)) (providers.Usage, error) {
	log := clog.FromContext(ctx)

	turns := req.TurnsFor(p.id)
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := genai.RoleUser
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}

	config := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	log.With("backend", p.id).With("model", p.model).Debug("Opening Gemini stream")

	var usage providers.Usage
	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, config) {
		if err != nil {
			return providers.Usage{}, fmt.Errorf("stream Gemini response: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.Text != "" {
					emit(part.Text)
				}
			}
		}
		if resp.UsageMetadata != nil {
			usage = providers.Usage{
				InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
				OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
			}
		}
	}

	return usage, nil
}

func ptr[T any](v T) *T {
	return &v
}
