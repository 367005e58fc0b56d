package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBody = 1 << 20 // 1 MiB

// InputError is a client mistake detected before any upstream call.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func inputError(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst, runs normalize and then the struct
// tags. Every failure is an *InputError.
func decode(w http.ResponseWriter, r *http.Request, dst normalizer) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return inputError("request body exceeds %d bytes", maxBody)
		case errors.Is(err, io.EOF):
			return inputError("empty request body")
		default:
			return inputError("bad json: %v", err)
		}
	}
	dst.normalize()
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

type normalizer interface {
	normalize()
}

func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return inputError("invalid request: %v", err)
	}
	fe := ves[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return inputError("%s is required", field)
	case "min":
		return inputError("%s must contain at least %s item(s)", field, fe.Param())
	case "len":
		return inputError("%s must contain exactly %s item(s)", field, fe.Param())
	default:
		return inputError("%s is invalid (%s)", field, fe.Tag())
	}
}
