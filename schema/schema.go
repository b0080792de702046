/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas for judge tool inputs from typed
// structs, so the tool contract lives in one place.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// reflector is wired with the defaults tool schemas need: inline structs,
// required-by-default fields, no $ref indirection.
var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// For returns the JSON schema for T.
func For[T any]() *jsonschema.Schema {
	var zero T
	return reflector.Reflect(&zero)
}

// MapFor returns T's schema as a generic map, the shape provider SDKs
// accept for tool input schemas.
func MapFor[T any]() (map[string]any, error) {
	raw, err := json.Marshal(For[T]())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return out, nil
}
