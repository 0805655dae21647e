package jobs

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("job not found")

// FieldError is one failed input field.
type FieldError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Issue)
	}
	return "invalid job: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, issue string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Issue: issue})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
