package handle

import (
	"net/http"
	"strings"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

// --- CONVERSATION ------------------------------------------------------------

const (
	maxHistory    = 20
	maxVocabulary = 30
)

const (
	SourceLesson = "lesson"
	SourceTopic  = "topic"
	SourceNone   = "none"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ConversationRequest struct {
	LLMName  string        `json:"llm_name"`
	Level    string        `json:"level" validate:"required"`
	Messages []ChatMessage `json:"messages" validate:"required"`

	Vocabulary []string `json:"vocabulary"`

	LessonURL      string `json:"lessonUrl"`
	LessonURLSnake string `json:"lesson_url"`
	LessonLink     string `json:"lessonLink"`
	URL            string `json:"url"`

	TopicResume string `json:"topicResume"`
}

// normalize coerces roles, drops blank turns and keeps the most recent
// history. A present but empty messages list stays non-nil.
func (r *ConversationRequest) normalize() {
	r.Level = strings.TrimSpace(r.Level)
	if r.Messages != nil {
		msgs := make([]ChatMessage, 0, len(r.Messages))
		for _, m := range r.Messages {
			content := strings.TrimSpace(m.Content)
			if content == "" {
				continue
			}
			msgs = append(msgs, ChatMessage{Role: string(role(m.Role)), Content: content})
		}
		if len(msgs) > maxHistory {
			msgs = msgs[len(msgs)-maxHistory:]
		}
		r.Messages = msgs
	}
	r.Vocabulary = cleanList(r.Vocabulary, maxVocabulary)
	r.LessonURL = firstNonBlank(r.LessonURL, r.LessonURLSnake, r.LessonLink, r.URL)
	r.LessonURLSnake, r.LessonLink, r.URL = "", "", ""
	r.TopicResume = strings.TrimSpace(r.TopicResume)
}

// role maps anything but assistant to user.
func role(s string) llm.Role {
	if strings.EqualFold(strings.TrimSpace(s), string(llm.RoleAssistant)) {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}

type ContextInfo struct {
	Source      string `json:"source"`
	OK          bool   `json:"ok"`
	Reason      string `json:"reason,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type ConversationResponse struct {
	Reply   string      `json:"reply"`
	Level   level.Level `json:"level"`
	Context ContextInfo `json:"context"`
}

func (h *Handle) Conversation(w http.ResponseWriter, r *http.Request) {
	var req ConversationRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	eng, err := h.engine(req.LLMName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	lvl := level.Normalize(req.Level)
	info, lc := h.lessonContext(r, &req)

	msgs := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	p := prompt.BuildConversation(prompt.ConversationInput{
		Level:      lvl,
		Messages:   msgs,
		Vocabulary: req.Vocabulary,
		Lesson:     lc,
	})

	raw, err := h.complete(r, eng, p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	reply, err := h.validator.Reply(raw)
	if err != nil {
		h.logger(r).Warn("bad upstream output", "kind", p.Kind, "provider", eng.Name(), "raw_len", len(raw), "error", err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConversationResponse{Reply: reply, Level: lvl, Context: info})
}

// lessonContext fetches the lesson page when a URL was given and falls back
// to the caller's topic summary. It never fails the request.
func (h *Handle) lessonContext(r *http.Request, req *ConversationRequest) (ContextInfo, prompt.LessonContext) {
	lc := prompt.LessonContext{TopicResume: req.TopicResume}
	info := ContextInfo{Source: SourceNone}

	if req.LessonURL != "" && h.fetcher != nil {
		res := h.fetcher.Fetch(r.Context(), req.LessonURL)
		info.OK, info.Reason = res.OK, res.Reason
		if res.OK {
			lc.Title, lc.Description = res.Title, res.Description
			info.Source, info.Title, info.Description = SourceLesson, res.Title, res.Description
			return info, lc
		}
		h.logger(r).Info("lesson context unavailable", "url", req.LessonURL, "reason", res.Reason)
	}
	if lc.TopicResume != "" {
		info.Source = SourceTopic
	}
	return info, lc
}
