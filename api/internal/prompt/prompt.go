// Package prompt turns validated learner input into the system and user
// messages sent to the completion service. Builders are pure: identical
// input always yields byte-identical prompts.
package prompt

import (
	"strings"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/util"
)

type Kind string

const (
	Feedback     Kind = "writing_feedback"
	Vocabulary   Kind = "vocabulary"
	Sentences    Kind = "sentences_feedback"
	Resume       Kind = "resume_score"
	Conversation Kind = "conversation"
)

// Shape is the top-level form the model output must take.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "text"
	}
}

type Profile struct {
	Temperature float64
	Shape       Shape
	MaxTokens   int
}

var profiles = map[Kind]Profile{
	Feedback:     {Temperature: 0.3, Shape: ShapeObject, MaxTokens: 1500},
	Vocabulary:   {Temperature: 0.4, Shape: ShapeArray, MaxTokens: 3000},
	Sentences:    {Temperature: 0.3, Shape: ShapeObject, MaxTokens: 2500},
	Resume:       {Temperature: 0.2, Shape: ShapeObject, MaxTokens: 1200},
	Conversation: {Temperature: 0.7, Shape: ShapeText, MaxTokens: 400},
}

func ProfileFor(k Kind) Profile { return profiles[k] }

type Prompt struct {
	Kind     Kind
	System   string
	Messages []llm.Message
}

// User returns the content of the last user message.
func (p Prompt) User() string {
	for i := len(p.Messages) - 1; i >= 0; i-- {
		if p.Messages[i].Role == llm.RoleUser {
			return p.Messages[i].Content
		}
	}
	return ""
}

// Request assembles the gateway request. With strict set, object-shaped
// kinds carry their schema for provider-side enforcement; otherwise they ask
// for the provider's plain JSON mode. Array and text kinds always go as text.
func (p Prompt) Request(strict bool) llm.Request {
	prof := ProfileFor(p.Kind)
	req := llm.Request{
		System:      p.System,
		Messages:    p.Messages,
		Temperature: prof.Temperature,
		MaxTokens:   prof.MaxTokens,
		Format:      llm.FormatText,
	}
	if prof.Shape != ShapeObject {
		return req
	}
	req.Format = llm.FormatJSON
	if strict {
		if s := ProviderSchema(p.Kind); s != nil {
			req.Format = llm.FormatSchema
			req.Schema = s
		}
	}
	return req
}

// systemHeader opens every system prompt with the role, the learner level and
// the level's style directives.
func systemHeader(role string, l level.Level) string {
	var b strings.Builder
	b.WriteString(role)
	b.WriteString(" The learner's CEFR level is ")
	b.WriteString(l.String())
	b.WriteString(".\n\nStyle guidance for this level:\n")
	b.WriteString(level.StyleGuidance(l))
	b.WriteString("\n")
	return b.String()
}

func jsonOnly(shape string) string {
	return "\nReturn only JSON, with no markdown fences and no text before or after it. " +
		"The JSON must have exactly this shape:\n" + shape + "\n"
}

func userJSON(task string, input any) []llm.Message {
	return []llm.Message{{
		Role:    llm.RoleUser,
		Content: task + "\n\nINPUT_JSON:\n" + util.MarshalStable(input),
	}}
}
