package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/output"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

// --- SENTENCES FEEDBACK ------------------------------------------------------

type SentenceItem struct {
	Word      string   `json:"word" validate:"required"`
	Sentences []string `json:"sentences" validate:"len=2,dive,required"`
}

type SentencesRequest struct {
	LLMName string         `json:"llm_name"`
	Items   []SentenceItem `json:"items" validate:"required,min=1,dive"`
	Level   string         `json:"level"`
}

// normalize drops every item that is not a word with exactly two non-blank
// sentences. Dropped items are not reported.
func (r *SentencesRequest) normalize() {
	kept := make([]SentenceItem, 0, len(r.Items))
	for _, it := range r.Items {
		it.Word = strings.TrimSpace(it.Word)
		for i := range it.Sentences {
			it.Sentences[i] = strings.TrimSpace(it.Sentences[i])
		}
		if validate.Struct(it) != nil {
			continue
		}
		kept = append(kept, it)
	}
	r.Items = kept
}

func (h *Handle) SentencesFeedback(w http.ResponseWriter, r *http.Request) {
	var req SentencesRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	eng, err := h.engine(req.LLMName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	in := prompt.SentencesInput{Level: level.Normalize(req.Level)}
	for _, it := range req.Items {
		in.Items = append(in.Items, prompt.SentencePair{
			Word:      it.Word,
			Sentences: [2]string{it.Sentences[0], it.Sentences[1]},
		})
	}
	out, raw, err := h.completeJSON(r, eng, prompt.BuildSentences(in))
	if err == nil {
		err = requireResults(out, raw, len(in.Items))
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// requireResults checks one result per submitted item.
func requireResults(out json.RawMessage, raw string, n int) error {
	var body struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(out, &body); err != nil {
		return &output.BadOutputError{Kind: prompt.Sentences, Raw: raw, Err: err}
	}
	return output.RequireItems(prompt.Sentences, body.Results, raw, n)
}
