package prompt

import (
	"strings"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
)

// LessonContext is what the conversation knows about the current lesson,
// either scraped from the lesson page or the caller's topic summary.
type LessonContext struct {
	Title       string
	Description string
	TopicResume string
}

type ConversationInput struct {
	Level      level.Level
	Messages   []llm.Message
	Vocabulary []string
	Lesson     LessonContext
}

const (
	// OpeningInstruction is sent when the learner has not written anything yet.
	OpeningInstruction = "Start the conversation: greet me in one short sentence and ask one open question about the lesson topic."
	continueNudge      = "(No reply from me yet.) Continue naturally and ask one open question."
)

func BuildConversation(in ConversationInput) Prompt {
	var b strings.Builder
	b.WriteString(systemHeader("You are a friendly English conversation partner helping a learner practise speaking.", in.Level))
	b.WriteString(`
Rules:
- Reply in plain conversational prose only: no JSON, no lists, no headings.
- Keep replies to 1-3 short sentences and end with one open question.
- If the learner makes a mistake, model the correct form naturally in your reply instead of lecturing.
- Stay on the lesson topic unless the learner changes it.
`)
	if ctx := lessonBlock(in.Lesson); ctx != "" {
		b.WriteString("\n")
		b.WriteString(ctx)
	}
	if len(in.Vocabulary) > 0 {
		b.WriteString("\nTarget vocabulary: try to use some of these words naturally and invite the learner to use them: ")
		b.WriteString(strings.Join(in.Vocabulary, ", "))
		b.WriteString(".\n")
	}

	msgs := make([]llm.Message, 0, len(in.Messages)+1)
	msgs = append(msgs, in.Messages...)
	switch {
	case len(msgs) == 0:
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: OpeningInstruction})
	case msgs[len(msgs)-1].Role == llm.RoleAssistant:
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: continueNudge})
	}

	return Prompt{
		Kind:     Conversation,
		System:   b.String(),
		Messages: msgs,
	}
}

func lessonBlock(l LessonContext) string {
	var b strings.Builder
	if l.Title != "" || l.Description != "" {
		b.WriteString("Lesson context (from the lesson page):\n")
		if l.Title != "" {
			b.WriteString("Title: " + l.Title + "\n")
		}
		if l.Description != "" {
			b.WriteString("Description: " + l.Description + "\n")
		}
		return b.String()
	}
	if l.TopicResume != "" {
		return "Lesson topic summary: " + l.TopicResume + "\n"
	}
	return ""
}
