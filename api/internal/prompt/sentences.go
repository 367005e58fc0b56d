package prompt

import (
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
)

type SentencePair struct {
	Word      string    `json:"word"`
	Sentences [2]string `json:"sentences"`
}

type SentencesInput struct {
	Items []SentencePair `json:"items"`
	Level level.Level    `json:"level"`
}

const sentencesShape = `{"results": [{"word": string, "sentences": [{"original": string, "corrected": string, "issues": string[], "tips": string[]}, {"original": string, "corrected": string, "issues": string[], "tips": string[]}], "overall_tips": string[]}]}`

func BuildSentences(in SentencesInput) Prompt {
	system := systemHeader("You are an English tutor checking example sentences written by a learner.", in.Level) + `
Each item has a target word and exactly two sentences that should use it correctly.
Return one result per item, in input order, with exactly two sentence reviews each.
- original: the sentence as written.
- corrected: the corrected sentence (identical to original when it is already correct).
- issues: short descriptions of grammar or usage problems, empty when none.
- tips: short, concrete tips for using the word better.
- overall_tips: 1-3 tips about the target word itself.` + jsonOnly(sentencesShape)

	return Prompt{
		Kind:     Sentences,
		System:   system,
		Messages: userJSON("Review these sentences and return the results JSON.", in),
	}
}
