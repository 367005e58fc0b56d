package handle

import (
	"net/http"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

// --- RESUME SCORE ------------------------------------------------------------

type ResumeRequest struct {
	LLMName string `json:"llm_name"`

	Drafts []string `json:"drafts"`
	// legacy shape: first draft, second draft, hundred-word paragraph
	Writing1   string `json:"writing1"`
	Writing2   string `json:"writing2"`
	Writing100 string `json:"writing100"`

	NewWords        []string       `json:"newWords"`
	SentencesByWord map[string]any `json:"sentencesByWord"`
	Level           string         `json:"level"`
}

// normalize folds both request shapes into Drafts: the list of non-blank
// drafts in writing order. drafts wins when it has any content.
func (r *ResumeRequest) normalize() {
	drafts := nonBlank(r.Drafts...)
	if len(drafts) == 0 {
		drafts = nonBlank(r.Writing1, r.Writing2, r.Writing100)
	}
	r.Drafts = drafts
	r.Writing1, r.Writing2, r.Writing100 = "", "", ""

	r.NewWords = cleanList(r.NewWords, 0)
	if r.SentencesByWord == nil {
		r.SentencesByWord = map[string]any{}
	}
}

func (h *Handle) ResumeScore(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	eng, err := h.engine(req.LLMName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	p := prompt.BuildResume(prompt.ResumeInput{
		Drafts:          req.Drafts,
		NewWords:        req.NewWords,
		SentencesByWord: req.SentencesByWord,
		Level:           level.Normalize(req.Level),
	})
	out, _, err := h.completeJSON(r, eng, p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
