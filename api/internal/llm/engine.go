// Package llm is the gateway to the completion providers. An Engine wraps a
// single provider and performs exactly one round trip per Complete call; it
// does not retry and it does not interpret the returned text.
package llm

import (
	"context"
	"errors"
	"sort"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Format tells the provider what kind of text the caller expects back.
type Format int

const (
	// FormatText asks for plain text; JSON, if any, is requested by the prompt.
	FormatText Format = iota
	// FormatJSON enables the provider's JSON-object mode when it has one.
	FormatJSON
	// FormatSchema submits Request.Schema for provider-side enforcement.
	FormatSchema
)

// Schema is a JSON schema submitted with FormatSchema requests.
type Schema struct {
	Name       string
	Definition map[string]any
	Strict     bool
}

type Request struct {
	System   string
	Messages []Message

	// Model overrides the engine default when set.
	Model       string
	Temperature float64
	MaxTokens   int

	Format Format
	Schema *Schema
}

type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, req Request) (string, error)
}

var ErrUnknownEngine = errors.New("unknown llm_name")

var aliases = map[string]string{
	"openai":    "gpt",
	"chatgpt":   "gpt",
	"anthropic": "claude",
	"google":    "gemini",
}

// Engines holds the engines configured at startup. It is read-only once the
// server starts serving.
type Engines struct {
	def string
	m   map[string]Engine
}

func NewEngines(defaultName string) *Engines {
	return &Engines{def: canonical(defaultName), m: map[string]Engine{}}
}

func (e *Engines) Register(eng Engine) {
	if eng == nil {
		return
	}
	e.m[canonical(eng.Name())] = eng
}

// GetEngine resolves llmName (or the default when empty) to a registered engine.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := canonical(llmName)
	if name == "" {
		name = e.def
	}
	if eng, ok := e.m[name]; ok {
		return eng, nil
	}
	return nil, ErrUnknownEngine
}

// Names lists registered engines in sorted order.
func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.m))
	for k := range e.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		return a
	}
	return n
}
