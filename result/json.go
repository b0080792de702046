/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package result extracts structured data from model output text.
package result

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls JSON content out of a model response that may wrap it
// in a markdown code fence. Without a fence the trimmed input is returned
// as-is for the caller's unmarshal to validate.
func ExtractJSON(text string) string {
	if _, after, found := strings.Cut(text, "```json\n"); found {
		if body, _, closed := strings.Cut(after, "```"); closed {
			return strings.TrimSpace(body)
		}
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Extract unmarshals the JSON content of a model response into T.
func Extract[T any](text string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &out); err != nil {
		return out, err
	}
	return out, nil
}
