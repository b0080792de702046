/*
Copyright 2026 Prompt Arena Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder assembles model prompts from templates with
// {{placeholder}} bindings. Templates are declared as literals at package
// scope; request data is bound per call, marshaled as XML, JSON, or YAML
// so user content stays clearly delimited inside the prompt.
package promptbuilder

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"maps"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// literal only accepts compile-time string literals, keeping template
// text out of user control.
type literal string

// Prompt is a template with named, bind-once placeholders.
type Prompt struct {
	template string
	bindings map[string]binding
}

// NewPrompt parses a template literal and records its placeholders.
func NewPrompt(template literal) (*Prompt, error) {
	bindings := make(map[string]binding)
	_, err := walk(string(template), func(name string) (string, error) {
		if _, ok := bindings[name]; !ok {
			bindings[name] = unbound{name: name}
		}
		return "", nil
	})
	if err != nil {
		return nil, err
	}
	return &Prompt{template: string(template), bindings: bindings}, nil
}

// MustNewPrompt is NewPrompt for package-level variables; it panics on a
// malformed template.
func MustNewPrompt(template literal) *Prompt {
	p, err := NewPrompt(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Placeholders returns the set of placeholder names in the template.
func (p *Prompt) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(p.bindings))
	for name := range p.bindings {
		names[name] = struct{}{}
	}
	return names
}

// BindLiteral binds a developer-provided literal string to a placeholder,
// returning a new Prompt.
func (p *Prompt) BindLiteral(name string, value literal) (*Prompt, error) {
	return p.bind(name, bound{val: string(value)})
}

// BindXML binds structured data to a placeholder as indented XML.
func (p *Prompt) BindXML(name string, data any) (*Prompt, error) {
	out, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal XML for %q: %w", name, err)
	}
	return p.bind(name, bound{val: string(out)})
}

// BindJSON binds structured data to a placeholder as indented JSON.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON for %q: %w", name, err)
	}
	return p.bind(name, bound{val: string(out)})
}

// BindYAML binds structured data to a placeholder as YAML.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal YAML for %q: %w", name, err)
	}
	return p.bind(name, bound{val: string(out)})
}

func (p *Prompt) bind(name string, b binding) (*Prompt, error) {
	existing, ok := p.bindings[name]
	if !ok {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if _, isUnbound := existing.(unbound); !isUnbound {
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	next := &Prompt{template: p.template, bindings: maps.Clone(p.bindings)}
	next.bindings[name] = b
	return next, nil
}

// Build renders the prompt; every placeholder must be bound.
func (p *Prompt) Build() (string, error) {
	return walk(p.template, func(name string) (string, error) {
		return p.bindings[name].value()
	})
}

// Bindable is implemented by request types that know how to bind their
// fields into a prompt template.
type Bindable interface {
	Bind(prompt *Prompt) (*Prompt, error)
}

type binding interface {
	value() (string, error)
}

type unbound struct{ name string }

func (u unbound) value() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", u.name)
}

type bound struct{ val string }

func (b bound) value() (string, error) { return b.val, nil }

// walk tokenizes the template, calling resolve for each {{name}}.
func walk(template string, resolve func(name string) (string, error)) (string, error) {
	var out strings.Builder
	for len(template) > 0 {
		start := strings.Index(template, "{{")
		if start == -1 {
			out.WriteString(template)
			break
		}
		out.WriteString(template[:start])

		end := strings.Index(template[start:], "}}")
		if end == -1 {
			return "", errors.New("unclosed binding: missing '}}'")
		}
		end += start + 2

		name := strings.TrimSpace(template[start+2 : end-2])
		if !validIdentifier(name) {
			return "", fmt.Errorf("invalid binding identifier %q", name)
		}
		replacement, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(replacement)
		template = template[end:]
	}
	return out.String(), nil
}

// validIdentifier requires a leading letter followed by letters, digits,
// or underscores.
func validIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case i == 0 && !unicode.IsLetter(r):
			return false
		case i > 0 && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_':
			return false
		}
	}
	return s != ""
}
