package prompt

import (
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/util"
)

const FeedbackSchema = `{
  "type": "object",
  "properties": {
    "corrected_text": {"type": "string"},
    "key_issues": {"type": "array", "items": {"type": "string"}},
    "rewrite_suggestions": {"type": "array", "items": {"type": "string"}},
    "quick_tips": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["corrected_text", "key_issues", "rewrite_suggestions", "quick_tips"]
}`

const VocabularySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "word": {"type": "string"},
      "definition": {"type": "string"},
      "synonyms": {"type": "array", "items": {"type": "string"}},
      "examples": {"type": "array", "items": {"type": "string"}},
      "collocations": {"type": "array", "items": {"type": "string"}},
      "translations": {"type": "object", "additionalProperties": {"type": "string"}}
    },
    "required": ["word", "definition", "synonyms", "examples", "collocations", "translations"]
  }
}`

const SentencesSchema = `{
  "type": "object",
  "properties": {
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "word": {"type": "string"},
          "sentences": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "items": {
              "type": "object",
              "properties": {
                "original": {"type": "string"},
                "corrected": {"type": "string"},
                "issues": {"type": "array", "items": {"type": "string"}},
                "tips": {"type": "array", "items": {"type": "string"}}
              },
              "required": ["original", "corrected", "issues", "tips"]
            }
          },
          "overall_tips": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["word", "sentences", "overall_tips"]
      }
    }
  },
  "required": ["results"]
}`

const ResumeSchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "score_total": {"type": "integer", "minimum": 0, "maximum": 100},
    "breakdown": {
      "type": "object",
      "properties": {
        "grammar": {"type": "integer", "minimum": 0, "maximum": 25},
        "clarity": {"type": "integer", "minimum": 0, "maximum": 25},
        "vocabulary": {"type": "integer", "minimum": 0, "maximum": 25},
        "improvement": {"type": "integer", "minimum": 0, "maximum": 25}
      },
      "required": ["grammar", "clarity", "vocabulary", "improvement"]
    },
    "next_steps": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["summary", "score_total", "breakdown", "next_steps"]
}`

var schemas = map[Kind]string{
	Feedback:   FeedbackSchema,
	Vocabulary: VocabularySchema,
	Sentences:  SentencesSchema,
	Resume:     ResumeSchema,
}

// SchemaFor returns the output contract for k, nil for conversation.
func SchemaFor(k Kind) *llm.Schema {
	raw, ok := schemas[k]
	if !ok {
		return nil
	}
	def, err := util.ParseSchema(string(k), raw)
	if err != nil {
		panic(err)
	}
	return &llm.Schema{Name: string(k), Definition: def}
}

// keywords some providers refuse inside strict schemas; ranges and counts
// are still enforced by the local validator.
var providerUnsupported = []string{"minimum", "maximum", "minItems", "maxItems"}

// ProviderSchema is the strict variant submitted to the provider. Only
// object-rooted kinds have one.
func ProviderSchema(k Kind) *llm.Schema {
	if ProfileFor(k).Shape != ShapeObject {
		return nil
	}
	s := SchemaFor(k)
	if s == nil {
		return nil
	}
	def := util.CloneSchema(s.Definition)
	stripKeywords(def, providerUnsupported)
	util.FixJSONSchemaStrict(def)
	return &llm.Schema{Name: s.Name, Definition: def, Strict: true}
}

func stripKeywords(node any, keys []string) {
	switch n := node.(type) {
	case map[string]any:
		for _, k := range keys {
			delete(n, k)
		}
		for _, v := range n {
			stripKeywords(v, keys)
		}
	case []any:
		for _, v := range n {
			stripKeywords(v, keys)
		}
	}
}
