/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/promptarena/arena/schema"
)

const (
	scoreToolName   = "score_response"
	verdictToolName = "declare_verdict"
)

// scoreArgs is the input contract of the score_response tool.
type scoreArgs struct {
	Backend   string  `json:"backend" jsonschema:"required,description=Identifier of the backend being scored"`
	Criterion string  `json:"criterion" jsonschema:"required,description=Rubric criterion this score applies to"`
	Score     float64 `json:"score" jsonschema:"required,minimum=1,maximum=10,description=Score from 1 (worst) to 10 (best)"`
	Rationale string  `json:"rationale" jsonschema:"required,description=One or two sentences justifying the score"`
}

// verdictArgs is the input contract of the declare_verdict tool.
type verdictArgs struct {
	Winner    string `json:"winner" jsonschema:"required,description=Identifier of the winning backend"`
	Verdict   string `json:"verdict" jsonschema:"required,description=Overall comparison explaining the outcome"`
	Highlight string `json:"highlight,omitempty" jsonschema:"description=The single strongest excerpt from the winning response"`
}

// protocolTools builds the fixed tool set offered to the judging backend.
func protocolTools() ([]anthropic.ToolUnionParam, error) {
	score, err := toolParam[scoreArgs](scoreToolName,
		"Record one criterion score for one backend's response. Call once per backend per criterion.")
	if err != nil {
		return nil, err
	}
	verdict, err := toolParam[verdictArgs](verdictToolName,
		"Declare the winning backend. Call exactly once, after all scores are recorded.")
	if err != nil {
		return nil, err
	}
	return []anthropic.ToolUnionParam{
		{OfTool: &score},
		{OfTool: &verdict},
	}, nil
}

// toolParam derives an Anthropic tool definition from T's JSON schema.
func toolParam[T any](name, description string) (anthropic.ToolParam, error) {
	m, err := schema.MapFor[T]()
	if err != nil {
		return anthropic.ToolParam{}, fmt.Errorf("schema for tool %q: %w", name, err)
	}

	var required []string
	if raw, ok := m["required"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}

	return anthropic.ToolParam{
		Name:        name,
		Description: anthropic.String(description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: m["properties"],
			Required:   required,
		},
	}, nil
}
