package config

import (
	"fmt"
	"strings"
)

// FieldError describes one validation failure. Field is the dotted schema
// key ("database.port"), Reason a human-readable explanation.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError reports every field that failed validation. Validation
// never stops at the first failure so operators can fix an entire file in
// one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%d invalid configuration field(s): %s", len(e.Fields), strings.Join(parts, "; "))
}

// Has reports whether the dotted key appears among the failed fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// UnknownKeyError is returned by Get for a key outside the schema. It
// indicates a programming error in the caller, not bad operator input.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown configuration key: %s", e.Key)
}
