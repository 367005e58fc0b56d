package prompt

import (
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
)

type FeedbackInput struct {
	Text     string      `json:"text"`
	Level    level.Level `json:"level"`
	StepName string      `json:"step_name"`
}

const feedbackShape = `{"corrected_text": string, "key_issues": string[], "rewrite_suggestions": string[], "quick_tips": string[]}`

func BuildFeedback(in FeedbackInput) Prompt {
	system := systemHeader("You are an encouraging English writing tutor.", in.Level) + `
The learner is working on the writing step "` + in.StepName + `".
Correct the learner's text while keeping their meaning and personal voice.
- corrected_text: the full corrected text.
- key_issues: up to 5 short descriptions of the most important problems.
- rewrite_suggestions: up to 3 alternative phrasings for weak sentences.
- quick_tips: up to 3 practical tips the learner can apply next time.
Use empty arrays when there is nothing to report.` + jsonOnly(feedbackShape)

	return Prompt{
		Kind:     Feedback,
		System:   system,
		Messages: userJSON("Review this learner text and return the feedback JSON.", in),
	}
}
