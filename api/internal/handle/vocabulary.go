package handle

import (
	"net/http"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/output"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

// --- VOCABULARY --------------------------------------------------------------

type VocabularyRequest struct {
	LLMName             string   `json:"llm_name"`
	Words               []string `json:"words" validate:"required,min=1"`
	Level               string   `json:"level"`
	NativeLanguageCode  string   `json:"nativeLanguageCode"`
	NativeLanguageCodes []string `json:"nativeLanguageCodes"`
}

func (r *VocabularyRequest) normalize() {
	r.Words = cleanList(r.Words, 0)
	r.NativeLanguageCodes = languageCodes(r.NativeLanguageCode, r.NativeLanguageCodes)
	r.NativeLanguageCode = ""
}

func (h *Handle) Vocabulary(w http.ResponseWriter, r *http.Request) {
	var req VocabularyRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	eng, err := h.engine(req.LLMName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	p := prompt.BuildVocabulary(prompt.VocabularyInput{
		Words:               req.Words,
		Level:               level.Normalize(req.Level),
		NativeLanguageCodes: req.NativeLanguageCodes,
	})
	out, raw, err := h.completeJSON(r, eng, p)
	if err == nil {
		err = output.RequireItems(prompt.Vocabulary, out, raw, len(req.Words))
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
