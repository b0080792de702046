/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package providers

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/promptarena/arena/arena"
)

type stubBackend struct {
	id arena.BackendID
}

func (s stubBackend) ID() arena.BackendID { return s.id }
func (s stubBackend) Model() string       { return "stub" }
func (s stubBackend) Stream(context.Context, Request, func(string)) (Usage, error) {
	return Usage{}, nil
}

func TestTurnsFor(t *testing.T) {
	req := Request{
		History: []arena.PriorRound{{
			Prompt: "first question",
			Responses: map[arena.BackendID]string{
				"gpt":    "gpt answer",
				"claude": "claude answer",
			},
		}, {
			Prompt:    "second question",
			Responses: map[arena.BackendID]string{"claude": "claude again"},
		}},
		Prompt: "third question",
	}

	got := req.TurnsFor("gpt")
	want := []Turn{
		{Role: "user", Text: "first question"},
		{Role: "assistant", Text: "gpt answer"},
		{Role: "user", Text: "second question"},
		{Role: "assistant", Text: "(no response in this round)"},
		{Role: "user", Text: "third question"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TurnsFor mismatch (-want +got):\n%s", diff)
	}
}

func TestTurnsForNoHistory(t *testing.T) {
	got := Request{Prompt: "hello"}.TurnsFor("gpt")
	want := []Turn{{Role: "user", Text: "hello"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TurnsFor mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(stubBackend{id: "gpt"}, stubBackend{id: "claude"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if diff := cmp.Diff([]arena.BackendID{"gpt", "claude"}, reg.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}

	if _, ok := reg.Get("gpt"); !ok {
		t.Error("Get(gpt) not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get(missing) unexpectedly found")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(stubBackend{id: "gpt"}, stubBackend{id: "gpt"}); err == nil {
		t.Error("NewRegistry should reject duplicate ids")
	}
}
