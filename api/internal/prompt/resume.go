package prompt

import (
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
)

type ResumeInput struct {
	Drafts          []string       `json:"drafts"`
	NewWords        []string       `json:"new_words"`
	SentencesByWord map[string]any `json:"sentences_by_word"`
	Level           level.Level    `json:"level"`
}

const resumeShape = `{"summary": string, "score_total": integer 0-100, "breakdown": {"grammar": integer 0-25, "clarity": integer 0-25, "vocabulary": integer 0-25, "improvement": integer 0-25}, "next_steps": string[]}`

func BuildResume(in ResumeInput) Prompt {
	system := systemHeader("You are an English writing coach scoring a learner's lesson work.", in.Level) + `
The drafts are listed in the order they were written; later drafts should show improvement.
Score the work for the learner's level:
- grammar, clarity, vocabulary (use of the new words), improvement (progress across drafts): 0-25 each.
- score_total: the sum of the four breakdown scores (0-100).
- summary: 2-3 encouraging sentences about the overall result.
- next_steps: 2-4 concrete actions for the next lesson.` + jsonOnly(resumeShape)

	return Prompt{
		Kind:     Resume,
		System:   system,
		Messages: userJSON("Score this lesson work and return the JSON.", in),
	}
}
