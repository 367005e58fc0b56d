// Package handle serves the AI endpoints. Every handler runs the same
// pipeline: decode and clean the request, build the prompt, call one engine,
// validate the model output, respond.
package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/lesson"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/logger"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/output"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

// ContextFetcher loads lesson metadata for the conversation endpoint.
type ContextFetcher interface {
	Fetch(ctx context.Context, url string) lesson.Result
}

type Handle struct {
	engs      *llm.Engines
	validator *output.Validator
	fetcher   ContextFetcher
	log       *logger.Logger

	// strict submits provider-side JSON schemas for object endpoints.
	strict bool
}

func New(engs *llm.Engines, v *output.Validator, f ContextFetcher, log *logger.Logger, strict bool) *Handle {
	if log == nil {
		log = logger.Nop()
	}
	return &Handle{
		engs:      engs,
		validator: v,
		fetcher:   f,
		log:       log,
		strict:    strict,
	}
}

func (h *Handle) logger(r *http.Request) *logger.Logger {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return h.log.With("request_id", id)
	}
	return h.log
}

// engine resolves llm_name; an unknown name is the caller's mistake.
func (h *Handle) engine(llmName string) (llm.Engine, error) {
	eng, err := h.engs.GetEngine(llmName)
	if err != nil {
		return nil, inputError("unknown llm_name %q", llmName)
	}
	return eng, nil
}

// complete sends p to eng and returns the raw text.
func (h *Handle) complete(r *http.Request, eng llm.Engine, p prompt.Prompt) (string, error) {
	raw, err := eng.Complete(r.Context(), p.Request(h.strict))
	if err != nil {
		h.logger(r).Error("upstream call failed", "kind", p.Kind, "provider", eng.Name(), "error", err)
		return "", err
	}
	h.logger(r).Debug("upstream call ok", "kind", p.Kind, "provider", eng.Name(), "model", eng.GetModel(), "raw_len", len(raw))
	return raw, nil
}

// completeJSON runs p and returns the validated JSON value with the raw text
// it came from.
func (h *Handle) completeJSON(r *http.Request, eng llm.Engine, p prompt.Prompt) (json.RawMessage, string, error) {
	raw, err := h.complete(r, eng, p)
	if err != nil {
		return nil, "", err
	}
	out, err := h.validator.Validate(p.Kind, raw)
	if err != nil {
		h.logger(r).Warn("bad upstream output", "kind", p.Kind, "provider", eng.Name(), "raw_len", len(raw), "error", err)
		return nil, raw, err
	}
	return out, raw, nil
}

type errorBody struct {
	Error string  `json:"error"`
	Raw   *string `json:"raw,omitempty"`
}

func (h *Handle) writeError(w http.ResponseWriter, err error) {
	var (
		in  *InputError
		bad *output.BadOutputError
		up  *llm.UpstreamError
	)
	switch {
	case errors.As(err, &in):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: in.Error()})
	case errors.As(err, &bad):
		raw := bad.Raw
		writeJSON(w, http.StatusBadGateway, errorBody{Error: bad.Error(), Raw: &raw})
	case errors.As(err, &up):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: up.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
