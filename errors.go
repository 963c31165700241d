package objectfilter

import "github.com/google/objectfilter/compiler"

// ParseError wraps a scanner/parser failure with the offending query
// text, the way the teacher's Parse()/MultiParse() keep the source
// snippet alongside a participle error (vfilter.go).
type ParseError struct {
	Query string
	Cause error
}

func (e *ParseError) Error() string {
	return "objectfilter: parse error: " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error { return e.Cause }

// UnknownOperator, InvalidNumberOfOperands and BadRegex are raised at
// Compile time; defined in objectfilter/compiler (which already owns
// the registry that can tell an operator keyword is unregistered) and
// aliased here so callers can type-switch on the single root-level
// error vocabulary spec.md §9 describes without importing the
// compiler package directly.
type (
	UnknownOperator         = compiler.UnknownOperator
	InvalidNumberOfOperands = compiler.InvalidNumberOfOperands
	BadRegex                = compiler.BadRegex
)
