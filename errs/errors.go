/*
File    : graft/errs/errors.go
*/

// Package errs defines the typed error taxonomy Graft programs can
// raise. Every error is fatal at its point of origin: the tick or
// parse producing it aborts, and the driver surfaces it to its
// caller. Graft programs are small enough that there is no recovery
// path worth building.
package errs

import "fmt"

// Kind classifies a Graft error for callers that want to branch on
// the taxonomy (e.g. a REPL coloring lex errors differently from
// type errors) without string-matching messages.
type Kind string

const (
	Lex   Kind = "LexError"
	Parse Kind = "ParseError"
	Name  Kind = "NameError"
	Type  Kind = "TypeError"
	Arity Kind = "ArityError"
)

// Error is the concrete error type produced by the lexer, parser and
// evaluator. Line and Column are 0 when the originating token carried
// no position information (e.g. a synthesized error about an entire
// program rather than one character).
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.Line == 0 && e.Column == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (line %d, column %d)", e.Kind, e.Message, e.Line, e.Column)
}

// New builds an Error with no position information.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds an Error carrying a source position.
func At(kind Kind, line, column int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}
