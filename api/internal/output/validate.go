// Package output checks model text against the contract of each endpoint
// before anything is sent back to the client.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/util"
)

// Validator holds the compiled output schemas. It is immutable after
// NewValidator and safe for concurrent use.
type Validator struct {
	schemas map[prompt.Kind]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	v := &Validator{schemas: map[prompt.Kind]*jsonschema.Schema{}}
	for _, k := range []prompt.Kind{prompt.Feedback, prompt.Vocabulary, prompt.Sentences, prompt.Resume} {
		s := prompt.SchemaFor(k)
		compiled, err := compile(s.Name, s.Definition)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", k, err)
		}
		v.schemas[k] = compiled
	}
	return v, nil
}

func compile(name string, def map[string]any) (*jsonschema.Schema, error) {
	// the compiler wants a plain decoded JSON value
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	url := "schema://" + name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// Validate parses raw as the JSON value kind expects and returns the value to
// emit. A surrounding code fence is tolerated; any other deviation yields a
// *BadOutputError carrying raw untouched.
func (v *Validator) Validate(kind prompt.Kind, raw string) (json.RawMessage, error) {
	compiled, ok := v.schemas[kind]
	if !ok {
		return nil, &BadOutputError{Kind: kind, Raw: raw, Err: ErrNoValidation}
	}
	body := util.StripCodeFences(raw)
	if !utf8.ValidString(body) {
		return nil, &BadOutputError{Kind: kind, Raw: raw, Err: ErrInvalidUTF8}
	}

	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &BadOutputError{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: %v", ErrNotJSON, err)}
	}

	want := prompt.ProfileFor(kind).Shape
	if !hasShape(parsed, want) {
		return nil, &BadOutputError{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: want %s", ErrWrongShape, want)}
	}

	out := json.RawMessage(body)
	if kind == prompt.Vocabulary {
		items := parsed.([]any)
		normalizeTranslations(items)
		b, err := json.Marshal(items)
		if err != nil {
			return nil, &BadOutputError{Kind: kind, Raw: raw, Err: err}
		}
		out = b
	}

	if err := compiled.Validate(parsed); err != nil {
		return nil, &BadOutputError{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: %v", ErrSchema, err)}
	}
	return out, nil
}

// Reply validates free-form conversational text: it only has to be non-empty.
func (v *Validator) Reply(raw string) (string, error) {
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return "", &BadOutputError{Kind: prompt.Conversation, Raw: raw, Err: ErrEmptyReply}
	}
	return reply, nil
}

// RequireItems checks that an array value has exactly n elements.
func RequireItems(kind prompt.Kind, value json.RawMessage, raw string, n int) error {
	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return &BadOutputError{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: %v", ErrWrongShape, err)}
	}
	if len(items) != n {
		return &BadOutputError{Kind: kind, Raw: raw, Err: fmt.Errorf("%w: got %d, want %d", ErrItemCount, len(items), n)}
	}
	return nil
}

func hasShape(v any, s prompt.Shape) bool {
	switch s {
	case prompt.ShapeObject:
		_, ok := v.(map[string]any)
		return ok
	case prompt.ShapeArray:
		_, ok := v.([]any)
		return ok
	default:
		return false
	}
}

// normalizeTranslations makes sure every vocabulary item carries a
// translations object. Translations are optional enrichment: a missing or
// malformed value becomes {} and non-string entries are dropped.
func normalizeTranslations(items []any) {
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		tr, ok := obj["translations"].(map[string]any)
		if !ok {
			obj["translations"] = map[string]any{}
			continue
		}
		for k, val := range tr {
			s, ok := val.(string)
			if !ok || strings.TrimSpace(s) == "" {
				delete(tr, k)
			}
		}
	}
}
