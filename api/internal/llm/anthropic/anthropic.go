package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
)

const (
	DefaultModel     = "claude-haiku-4-5"
	defaultMaxTokens = 2048
)

type Engine struct {
	Model  string
	client anthropic.Client
}

// New builds a Messages API engine. The SDK's automatic retries are disabled:
// every Complete call is a single round trip.
func New(key, model string, opts ...option.RequestOption) *Engine {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	all := append([]option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}, opts...)
	return &Engine{
		Model:  model,
		client: anthropic.NewClient(all...),
	}
}

func (e *Engine) Name() string     { return "claude" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := e.Model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  buildMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return "", llm.Upstream(e.Name(), err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", llm.Upstream(e.Name(), errors.New("anthropic: no text content in response"))
}

// buildMessages maps the history onto Messages API turns; the API wants the
// first turn to come from the user.
func buildMessages(msgs []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs)+1)
	if len(msgs) > 0 && msgs[0].Role == llm.RoleAssistant {
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("(conversation start)")))
	}
	for _, m := range msgs {
		role := anthropic.MessageParamRoleUser
		if m.Role == llm.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		out = append(out, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
		})
	}
	return out
}
