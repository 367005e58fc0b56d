package handle

import (
	"net/http"
	"strings"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

// --- WRITING FEEDBACK --------------------------------------------------------

type FeedbackRequest struct {
	LLMName  string `json:"llm_name"`
	Text     string `json:"text" validate:"required"`
	Level    string `json:"level"`
	StepName string `json:"stepName"`
}

func (r *FeedbackRequest) normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.StepName = firstNonBlank(r.StepName, "writing")
}

func (h *Handle) WritingFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	eng, err := h.engine(req.LLMName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	p := prompt.BuildFeedback(prompt.FeedbackInput{
		Text:     req.Text,
		Level:    level.Normalize(req.Level),
		StepName: req.StepName,
	})
	out, _, err := h.completeJSON(r, eng, p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
