// Package validate implements the schema validator (component C2): it
// accepts a raw parsed schema document and produces either a fully
// elaborated schema.Schema or the complete list of structural and
// semantic violations found in it. Validation never aborts on the first
// error — every pass collects into a slice so the pipeline's
// self-correction stage sees the full picture in one round.
package validate

import (
	"fmt"
	"strings"
)

// ErrorKind is the vocabulary the self-correction router (internal/correct)
// uses to classify known-fixable defects.
type ErrorKind string

const (
	KindMissingField      ErrorKind = "MissingField"
	KindTypeMismatch      ErrorKind = "TypeMismatch"
	KindOutOfRange        ErrorKind = "OutOfRange"
	KindEnumViolation     ErrorKind = "EnumViolation"
	KindIdentifierIllegal ErrorKind = "IdentifierIllegal"
	KindCrossFieldMismatch ErrorKind = "CrossFieldMismatch"
	KindReservedWord      ErrorKind = "ReservedWord"
)

// ValidationError is one structural or semantic violation. Path is a JSON
// Pointer following RFC 6901 ("/catalogue/object", "/schema/delta_fields/foo/width").
type ValidationError struct {
	Path    string
	Kind    ErrorKind
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s [%s]: %s", e.Path, e.Kind, e.Message))
	if e.Hint != "" {
		sb.WriteString(" (hint: " + e.Hint + ")")
	}
	return sb.String()
}

// Errors is the collected-violations result type. It implements error so
// callers can return it directly, but callers that need per-error detail
// (the CLI's JSON-lines renderer, the self-correction router) should use
// the slice form.
type Errors []*ValidationError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "no validation errors"
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (es Errors) HasKind(k ErrorKind) bool {
	for _, e := range es {
		if e.Kind == k {
			return true
		}
	}
	return false
}
