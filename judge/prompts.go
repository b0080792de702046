/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"fmt"

	"github.com/promptarena/arena/arena"
	"github.com/promptarena/arena/promptbuilder"
)

// rubrics maps each arena kind to its scoring criteria.
var rubrics = map[arena.Kind][]string{
	arena.KindDebate:  {"reasoning", "clarity", "persuasiveness"},
	arena.KindCode:    {"correctness", "code quality", "completeness"},
	arena.KindWriting: {"clarity", "style", "fit for purpose"},
}

// Criteria returns the rubric criteria for the given arena kind, falling
// back to the debate rubric for unknown kinds.
func Criteria(kind arena.Kind) []string {
	if c, ok := rubrics[kind]; ok {
		return c
	}
	return rubrics[arena.KindDebate]
}

// judgePrompt instructs the model to drive the scoring protocol.
var judgePrompt = promptbuilder.MustNewPrompt(`<task>
You are judging an arena round: several AI backends answered the same user
prompt, and you must score each answer and pick a winner.
</task>

<user_prompt>
{{prompt}}
</user_prompt>

{{responses}}

<rubric>
Task category: {{category}}
Score each response on these criteria:
{{criteria}}
</rubric>

<instructions>
1. For every backend and every rubric criterion, call the score_response
   tool exactly once with a score from 1 (worst) to 10 (best) and a short
   rationale. Judge each response only on its merits for the criterion.
2. After all scores are recorded, call the declare_verdict tool exactly
   once. The winner must be one of the backend identifiers shown above.
   Include a short overall verdict and, if one stands out, the strongest
   excerpt from the winning response as the highlight.
3. Do not produce any output other than these tool calls.
</instructions>`)

// responseXML wraps one backend's answer for the judge prompt.
type responseXML struct {
	XMLName struct{} `xml:"response"`
	Backend string   `xml:"backend,attr"`
	Content string   `xml:",chardata"`
}

type responsesXML struct {
	XMLName   struct{}      `xml:"responses"`
	Responses []responseXML `xml:"response"`
}

// buildPrompt renders the judging prompt for one request. participants
// must be the sorted key set of req.Responses so the prompt is stable.
func buildPrompt(req Request, participants []arena.BackendID) (string, error) {
	wrapped := responsesXML{}
	for _, id := range participants {
		wrapped.Responses = append(wrapped.Responses, responseXML{
			Backend: string(id),
			Content: req.Responses[id],
		})
	}

	p, err := judgePrompt.BindXML("responses", wrapped)
	if err != nil {
		return "", err
	}
	if p, err = p.BindJSON("criteria", Criteria(req.Kind)); err != nil {
		return "", err
	}
	if p, err = p.BindXML("prompt", struct {
		XMLName struct{} `xml:"text"`
		Content string   `xml:",chardata"`
	}{Content: req.Prompt}); err != nil {
		return "", err
	}
	if p, err = p.BindXML("category", struct {
		XMLName struct{} `xml:"category"`
		Content string   `xml:",chardata"`
	}{Content: string(req.Category)}); err != nil {
		return "", err
	}

	out, err := p.Build()
	if err != nil {
		return "", fmt.Errorf("render judge prompt: %w", err)
	}
	return out, nil
}
