package output

import (
	"errors"
	"fmt"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

var (
	ErrNotJSON      = errors.New("output is not valid JSON")
	ErrInvalidUTF8  = errors.New("output is not valid UTF-8")
	ErrWrongShape   = errors.New("output has the wrong top-level shape")
	ErrSchema       = errors.New("output does not match the schema")
	ErrItemCount    = errors.New("output has the wrong number of items")
	ErrEmptyReply   = errors.New("output is empty")
	ErrNoValidation = errors.New("kind has no JSON contract")
)

// BadOutputError reports model text that failed validation. Raw is the text
// exactly as the provider returned it.
type BadOutputError struct {
	Kind prompt.Kind
	Raw  string
	Err  error
}

func (e *BadOutputError) Error() string {
	return fmt.Sprintf("%s: bad upstream output: %v", e.Kind, e.Err)
}

func (e *BadOutputError) Unwrap() error { return e.Err }
