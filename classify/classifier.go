/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package classify maps a free-text prompt to a task category.
//
// Classification is a pure scoring function: each category carries a set of
// high-confidence structural patterns (worth 10 points) and lower-confidence
// keyword cues (worth 2 points, case-insensitive substring match). The
// highest-scoring category wins; below a fixed threshold the prompt falls
// back to the general category. Identical input always yields an identical
// category.
package classify

import (
	"regexp"
	"strings"

	"github.com/promptarena/arena/arena"
)

const (
	patternPoints = 10
	keywordPoints = 2
	// scoreThreshold is the minimum winning score before a prompt is
	// considered classifiable at all.
	scoreThreshold = 5
)

// profile holds the cues for one category.
type profile struct {
	patterns []*regexp.Regexp
	keywords []string
}

var profiles = map[arena.Category]profile{
	arena.CategoryWriting: {
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(write|draft|compose|rewrite)\b.+\b(email|essay|article|blog|post|letter|story|copy|headline|caption|summary|speech|bio)\b`),
			regexp.MustCompile(`(?i)\b(edit|proofread|polish|rephrase)\b`),
			regexp.MustCompile(`(?i)\bmake (this|it) (sound|read)\b`),
		},
		keywords: []string{
			"write", "draft", "essay", "email", "blog", "article", "tone",
			"paragraph", "headline", "story", "tagline", "newsletter",
		},
	},
	arena.CategoryCode: {
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(function|class|method|struct|interface|api|endpoint|regex|query|script)\b`),
			regexp.MustCompile(`(?i)\b(debug|refactor|implement|compile|deploy)\b`),
			regexp.MustCompile(`(?i)\b(python|javascript|typescript|golang|rust|java|sql|html|css|react|docker|kubernetes)\b`),
			regexp.MustCompile("```"),
		},
		keywords: []string{
			"code", "bug", "error", "function", "variable", "library",
			"framework", "algorithm", "test", "stack trace", "null", "syntax",
		},
	},
	arena.CategoryResearch: {
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(what|who|when|where|why|how)\b`),
			regexp.MustCompile(`(?i)\b(research|investigate|find out|look up|sources?|citations?)\b`),
			regexp.MustCompile(`(?i)\b(history of|overview of|state of the art)\b`),
		},
		keywords: []string{
			"explain", "summarize", "facts", "study", "paper", "evidence",
			"background", "literature", "define", "definition",
		},
	},
	arena.CategoryAnalysis: {
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(compare|versus|vs\.?|contrast|trade-?offs?)\b`),
			regexp.MustCompile(`(?i)\b(analyze|analyse|evaluate|assess|weigh|rank)\b`),
			regexp.MustCompile(`(?i)\b(pros and cons|strengths and weaknesses)\b`),
		},
		keywords: []string{
			"data", "metric", "trend", "forecast", "decision", "option",
			"risk", "impact", "insight", "breakdown",
		},
	},
	// General has no cues of its own; it is the fallback.
	arena.CategoryGeneral: {},
}

// Classify returns the task category for the given prompt.
//
// The result is deterministic: categories are scored in a fixed priority
// order (arena.Categories) and only a strictly higher score displaces the
// current leader, so ties resolve to the earlier category.
func Classify(prompt string) arena.Category {
	lower := strings.ToLower(prompt)

	best := arena.CategoryGeneral
	bestScore := 0

	for _, cat := range arena.Categories {
		score := scoreCategory(prompt, lower, profiles[cat])
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	if bestScore < scoreThreshold {
		return arena.CategoryGeneral
	}
	return best
}

func scoreCategory(prompt, lower string, p profile) int {
	score := 0
	for _, re := range p.patterns {
		if re.MatchString(prompt) {
			score += patternPoints
		}
	}
	for _, kw := range p.keywords {
		if strings.Contains(lower, kw) {
			score += keywordPoints
		}
	}
	return score
}
