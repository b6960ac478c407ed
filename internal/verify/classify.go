package verify

import "regexp"

// FailureClass is a deterministic bucket for a failed check's tool output,
// grounded on the teacher's recovery.ErrorClass pattern (classify by
// regex/structural match over output text, never by calling out to a
// reasoning service).
type FailureClass string

const (
	ClassImportPathMismatch       FailureClass = "ImportPathMismatch"
	ClassNamingConventionMismatch FailureClass = "NamingConventionMismatch"
	ClassMissingPunctuation       FailureClass = "MissingPunctuation"
	ClassUndefinedSymbol          FailureClass = "UndefinedSymbol"
	ClassUnclassified             FailureClass = "Unclassified"
)

var classifiers = []struct {
	class   FailureClass
	pattern *regexp.Regexp
}{
	{ClassImportPathMismatch, regexp.MustCompile(`(?i)(cannot find module|no such file or directory|unresolved import|ModuleNotFoundError)`)},
	{ClassNamingConventionMismatch, regexp.MustCompile(`(?i)(expected identifier|invalid identifier|reserved word)`)},
	{ClassMissingPunctuation, regexp.MustCompile(`(?i)(expected [;:,{}()]|missing semicolon|unexpected end of (file|input))`)},
	{ClassUndefinedSymbol, regexp.MustCompile(`(?i)(undefined (reference|symbol|variable)|undeclared identifier|is not defined|cannot find value)`)},
}

// Classify matches tool output against the known failure patterns in
// priority order, returning ClassUnclassified (which escalates to the
// self-correction router) when nothing matches.
func Classify(toolOutput string) FailureClass {
	for _, c := range classifiers {
		if c.pattern.MatchString(toolOutput) {
			return c.class
		}
	}
	return ClassUnclassified
}
