// Package faults defines the error taxonomy shared across the engine.
//
// Every failure surfaced to a caller is a *Fault carrying a Kind, so
// callers can branch with errors.As without string matching. Network
// faults additionally carry the upstream HTTP status; schema faults
// carry a short source-context window around the failure position.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a fault.
type Kind string

const (
	// KindValidation covers malformed operations, bad or missing
	// variables, and value coercion failures.
	KindValidation Kind = "VALIDATION"
	// KindSchema covers structurally invalid SDL, unknown type
	// references, and unknown transform references.
	KindSchema Kind = "SCHEMA"
	// KindNetwork covers non-success upstream responses and transport
	// failures.
	KindNetwork Kind = "NETWORK"
	// KindConfiguration covers schema/query mismatches discovered at run
	// time: unknown resources, missing endpoints, missing base URLs.
	KindConfiguration Kind = "CONFIGURATION"
	// KindCancelled marks operations rejected by an explicit cancel.
	KindCancelled Kind = "CANCELLED"
)

// Fault is a kind-tagged error.
type Fault struct {
	Kind    Kind
	Message string

	// Status is the upstream HTTP status code. Set for KindNetwork only.
	Status int

	// Context is a window of source text around the failure position.
	// Set for SDL parse faults only.
	Context string

	// Pos is the byte offset of the failure in the parsed input, where
	// one is known. -1 otherwise.
	Pos int

	wrapped error
}

func (f *Fault) Error() string {
	if f.Context != "" {
		return fmt.Sprintf("%s: %s near %q", f.Kind, f.Message, f.Context)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.wrapped }

// Validationf builds a validation fault.
func Validationf(format string, args ...any) *Fault {
	return &Fault{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Schemaf builds a schema fault.
func Schemaf(format string, args ...any) *Fault {
	return &Fault{Kind: KindSchema, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Networkf builds a network fault with the upstream status code.
func Networkf(status int, format string, args ...any) *Fault {
	return &Fault{Kind: KindNetwork, Status: status, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Configf builds a configuration fault.
func Configf(format string, args ...any) *Fault {
	return &Fault{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Cancelledf builds a cancellation fault.
func Cancelledf(format string, args ...any) *Fault {
	return &Fault{Kind: KindCancelled, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Wrap attaches a cause so errors.Is/As see through the fault.
func (f *Fault) Wrap(err error) *Fault {
	f.wrapped = err
	return f
}

// WithPos records the byte offset of the failure.
func (f *Fault) WithPos(pos int) *Fault {
	f.Pos = pos
	return f
}

// WithContext records a source-context window.
func (f *Fault) WithContext(window string) *Fault {
	f.Context = window
	return f
}

// IsKind reports whether err is (or wraps) a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}
