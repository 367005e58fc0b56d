// Package level maps free-form CEFR tags onto the five levels the prompts
// understand and carries the per-level style directives.
package level

import "strings"

type Level string

const (
	A1 Level = "A1"
	A2 Level = "A2"
	B1 Level = "B1"
	B2 Level = "B2"
	C1 Level = "C1"

	Default = B2
)

// All returns the supported levels from beginner to advanced.
func All() []Level { return []Level{A1, A2, B1, B2, C1} }

// Normalize trims and uppercases s; anything that is not a known tag maps to B2.
func Normalize(s string) Level {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case A1, A2, B1, B2, C1:
		return l
	default:
		return Default
	}
}

func (l Level) String() string { return string(l) }

var styleGuidance = map[Level]string{
	A1: `- Use very short sentences (5-8 words) and only the most common 500 words.
- Stay in the present simple and present continuous; avoid other tenses.
- No idioms, phrasal verbs or slang.
- Correct only errors that block understanding; at most one correction per sentence, explained in simple words.`,
	A2: `- Use short sentences (8-12 words) and everyday vocabulary.
- Present simple, present continuous, past simple and "going to" future are fine.
- At most one very common phrasal verb per reply; no idioms.
- Correct basic grammar (verb forms, articles, word order) gently and briefly.`,
	B1: `- Use medium sentences (12-18 words) with simple linking words (because, although, so).
- Any common tense including present perfect and first conditional.
- Occasional common idioms or phrasal verbs, explained when used.
- Correct grammar and word choice; point out repeated patterns.`,
	B2: `- Use natural sentences of varied length; connectors like however, whereas, in addition.
- Full tense range including passive voice and second/third conditionals.
- Idioms and phrasal verbs in moderation where they sound natural.
- Correct grammar, collocations and register; suggest more precise vocabulary.`,
	C1: `- Use sophisticated, well-structured sentences with nuanced connectors.
- Full grammar range including inversion, cleft sentences and mixed conditionals.
- Idiomatic and natural language is encouraged.
- Correct subtle issues: style, tone, cohesion and register; be demanding but constructive.`,
}

// StyleGuidance returns the style directives for l; unknown values fall back
// to the B2 block.
func StyleGuidance(l Level) string {
	if g, ok := styleGuidance[l]; ok {
		return g
	}
	return styleGuidance[Default]
}
