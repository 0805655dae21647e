package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Issue is one failed field.
type Issue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError carries field-level problems with a request or a model
// response.
type ValidationError struct {
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+" "+is.Issue)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// decodeStrict decodes exactly one JSON value into dst, rejecting unknown
// fields.
func decodeStrict(raw []byte, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// decodeIssue turns a json decode error into a field issue.
func decodeIssue(err error) Issue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Issue{Field: typeErr.Field, Issue: "must be " + typeErr.Type.String()}
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		return Issue{Field: strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`), Issue: "is not allowed"}
	}
	return Issue{Field: "body", Issue: "must be a valid JSON object"}
}

// validateStruct runs tag validation and returns the failures as issues.
func validateStruct(v any) []Issue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Field: "body", Issue: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{Field: fieldPath(fe.Namespace()), Issue: describe(fe)})
	}
	return issues
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if isList {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isList {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gtefield":
		return "must be greater than or equal to " + lowerFirst(fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "uppercase":
		return "must be uppercase"
	}
	return "is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
