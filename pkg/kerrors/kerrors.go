// Package kerrors defines the error taxonomy shared by every edit
// operation in the engine. Callers at the transport boundary convert any
// returned error into a structured {kind, message} response via KindOf.
package kerrors

import "fmt"

// Kind is a stable, user-visible error category. It is never used as
// control flow inside the engine itself — callers branch on it only at
// the transport boundary.
type Kind string

const (
	BadGrammar         Kind = "BadGrammar"
	SymbolNotFound     Kind = "SymbolNotFound"
	InstanceNotFound   Kind = "InstanceNotFound"
	AmbiguousReference Kind = "AmbiguousReference"
	BadCoordinate      Kind = "BadCoordinate"
	CheckFailed        Kind = "CheckFailed"
	IOError            Kind = "IOError"

	// Unknown is returned by KindOf for errors that never passed through
	// this package (e.g. a bug that let a bare error escape).
	Unknown Kind = "Unknown"
)

// Error is the concrete error type every engine operation returns.
type Error struct {
	Kind       Kind
	Message    string
	Suggestion string // populated for SymbolNotFound when a fuzzy match exists
	Cause      error
}

func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (did you mean %q?)", e.Kind, e.Message, e.Suggestion)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithSuggestion attaches a fuzzy-match suggestion (used for SymbolNotFound).
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// KindOf extracts the Kind from any error. It returns the empty Kind if
// err is nil, and Unknown if err was never constructed through this
// package.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ke *Error
	if asError(err, &ke) {
		return ke.Kind
	}
	return Unknown
}

// asError avoids importing "errors" twice for a single narrow use.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
