package core

import "fmt"

// ValidationKind names the rule a candidate record violated.
type ValidationKind string

const (
	MissingAmount        ValidationKind = "missing_amount"
	ConflictingAmounts   ValidationKind = "conflicting_amounts"
	MissingRequiredField ValidationKind = "missing_required_field"
	InvalidValue         ValidationKind = "invalid_value"
)

// ValidationError is returned by the local validators. It never reaches the
// gateway; the presentation layer shows Message next to Field.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

var (
	ErrMissingAmount      = &ValidationError{Kind: MissingAmount}
	ErrConflictingAmounts = &ValidationError{Kind: ConflictingAmounts}
	ErrMissingField       = &ValidationError{Kind: MissingRequiredField}
	ErrInvalidValue       = &ValidationError{Kind: InvalidValue}
)

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches on Kind, and on Field when the target names one, so callers can
// write errors.Is(err, core.ErrMissingAmount).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

func missingField(field, msg string) *ValidationError {
	return &ValidationError{Kind: MissingRequiredField, Field: field, Message: msg}
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Kind: InvalidValue, Field: field, Message: msg}
}
