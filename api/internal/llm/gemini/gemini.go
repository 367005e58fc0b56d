package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

type Engine struct {
	APIKey string
	Model  string

	// extra client options, e.g. option.WithEndpoint in tests
	opts []option.ClientOption
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, req llm.Request) (string, error) {
	if e.APIKey == "" {
		return "", llm.Upstream(e.Name(), errors.New("GEMINI_API_KEY is empty"))
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)...)
	if err != nil {
		return "", llm.Upstream(e.Name(), err)
	}
	defer cl.Close()

	model := e.Model
	if req.Model != "" {
		model = req.Model
	}
	m := cl.GenerativeModel(model)
	m.GenerationConfig = generationConfig(req)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	history, last := splitHistory(req.Messages)
	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", llm.Upstream(e.Name(), err)
	}
	txt, ok := firstText(resp)
	if !ok {
		return "", llm.Upstream(e.Name(), errors.New("gemini: empty response"))
	}
	return txt, nil
}

func generationConfig(req llm.Request) genai.GenerationConfig {
	gc := genai.GenerationConfig{
		Temperature: ptrFloat32(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		n := int32(req.MaxTokens)
		gc.MaxOutputTokens = &n
	}
	switch req.Format {
	case llm.FormatJSON:
		gc.ResponseMIMEType = "application/json"
	case llm.FormatSchema:
		gc.ResponseMIMEType = "application/json"
		if req.Schema != nil {
			gc.ResponseSchema = buildSchema(req.Schema.Definition)
		}
	}
	return gc
}

// splitHistory returns every message but the last as chat history (assistant
// turns become "model" turns) and the text to send. A trailing assistant turn
// stays in history and a short nudge is sent instead.
func splitHistory(msgs []llm.Message) ([]*genai.Content, string) {
	if len(msgs) == 0 {
		return nil, "Continue."
	}
	last := msgs[len(msgs)-1]
	rest := msgs[:len(msgs)-1]
	send := last.Content
	if last.Role == llm.RoleAssistant {
		rest = msgs
		send = "Continue."
	}
	history := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return history, send
}

// buildSchema converts a JSON schema map into the subset genai understands.
func buildSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		s.Type = mapType(t)
	}
	if d, ok := def["description"].(string); ok {
		s.Description = d
	}
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if pd, ok := v.(map[string]any); ok {
				s.Properties[k] = buildSchema(pd)
			}
		}
	}
	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	if enums, ok := def["enum"].([]any); ok {
		for _, v := range enums {
			if str, ok := v.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = buildSchema(items)
	}
	return s
}

func mapType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String(), true
		}
	}
	return "", false
}

func ptrFloat32(f float32) *float32 { return &f }
