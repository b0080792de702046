/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package classify

import (
	"testing"

	"github.com/promptarena/arena/arena"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   arena.Category
	}{{
		name:   "writing launch email",
		prompt: "Write a product launch email",
		want:   arena.CategoryWriting,
	}, {
		name:   "writing edit request",
		prompt: "Proofread and polish this cover letter draft",
		want:   arena.CategoryWriting,
	}, {
		name:   "code debugging",
		prompt: "Debug this Python function that throws a null pointer error",
		want:   arena.CategoryCode,
	}, {
		name:   "code fenced block",
		prompt: "Why does this fail?\n```\nfmt.Println(x)\n```",
		want:   arena.CategoryCode,
	}, {
		name:   "research question",
		prompt: "What is the history of the transistor? Please cite sources.",
		want:   arena.CategoryResearch,
	}, {
		name:   "analysis comparison",
		prompt: "Compare PostgreSQL versus MySQL and list the trade-offs",
		want:   arena.CategoryAnalysis,
	}, {
		name:   "below threshold falls back to general",
		prompt: "hello there",
		want:   arena.CategoryGeneral,
	}, {
		name:   "empty prompt",
		prompt: "",
		want:   arena.CategoryGeneral,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.prompt); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	prompts := []string{
		"Write a product launch email",
		"Debug this Go code",
		"Compare A versus B",
		"random text with no cues",
	}
	for _, prompt := range prompts {
		first := Classify(prompt)
		for i := 0; i < 50; i++ {
			if got := Classify(prompt); got != first {
				t.Fatalf("Classify(%q) not deterministic: got %q then %q", prompt, first, got)
			}
		}
	}
}
