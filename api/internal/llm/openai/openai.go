package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
)

const DefaultModel = "gpt-4o-mini"

type Engine struct {
	Model  string
	client *goopenai.Client
}

// New builds a chat-completions engine. baseURL is optional and points the
// client at an OpenAI-compatible endpoint.
func New(key, model, baseURL string) *Engine {
	cfg := goopenai.DefaultConfig(key)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Engine{
		Model:  model,
		client: goopenai.NewClientWithConfig(cfg),
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := e.Model
	if req.Model != "" {
		model = req.Model
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: buildMessages(req),
	}
	// reasoning models reject anything but the default temperature
	if !fixedTemperature(model) {
		chatReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}

	switch req.Format {
	case llm.FormatJSON:
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	case llm.FormatSchema:
		if req.Schema == nil {
			break
		}
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return "", fmt.Errorf("marshal schema: %w", err)
		}
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(schemaBytes),
				Strict: req.Schema.Strict,
			},
		}
	}

	resp, err := e.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", llm.Upstream(e.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.Upstream(e.Name(), errors.New("openai: empty response"))
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(req llm.Request) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := goopenai.ChatMessageRoleUser
		if m.Role == llm.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return messages
}

func fixedTemperature(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") ||
		strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}
