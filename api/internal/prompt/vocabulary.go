package prompt

import (
	"strings"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/level"
)

type VocabularyInput struct {
	Words               []string    `json:"words"`
	Level               level.Level `json:"level"`
	NativeLanguageCodes []string    `json:"native_language_codes,omitempty"`
}

const vocabularyShape = `[{"word": string, "definition": string, "synonyms": string[], "examples": string[], "collocations": string[], "translations": {"<locale code>": string}}]`

func BuildVocabulary(in VocabularyInput) Prompt {
	system := systemHeader("You are an English vocabulary coach.", in.Level) + `
For every input word produce exactly one item, in the same order as the input.
- word: the input word unchanged.
- definition: a learner-friendly definition suited to the level.
- synonyms: 2-4 synonyms.
- examples: 2 example sentences at the learner's level.
- collocations: 2-4 common collocations.
` + translationClause(in.NativeLanguageCodes) + jsonOnly(vocabularyShape)

	return Prompt{
		Kind:     Vocabulary,
		System:   system,
		Messages: userJSON("Explain these words and return the JSON array.", in),
	}
}

// translationClause always keeps the translations key in the output contract,
// empty when no native language was requested.
func translationClause(codes []string) string {
	if len(codes) == 0 {
		return `- translations: do not translate; always set "translations" to an empty object {}.
`
	}
	return `- translations: an object whose keys are exactly these locale codes: ` + strings.Join(codes, ", ") + `.
  Each value is the most natural translation of the word in that language. Do not add other keys.
`
}
