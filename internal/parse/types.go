// Package parse implements the decode/patch/encode boundary between
// external configuration JSON and the in-memory registry.Configuration:
// schema-driven decoding against pre-registered feature declarations, a
// tagged ParseResult protocol, and a byte-stable canonical encoder.
package parse

import (
	"fmt"

	"github.com/amichne/konditional/internal/registry"
)

// ErrorKind is the closed set of ways a decode can fail.
type ErrorKind string

const (
	KindInvalidJson     ErrorKind = "INVALID_JSON"
	KindInvalidSnapshot ErrorKind = "INVALID_SNAPSHOT"
	KindFeatureNotFound ErrorKind = "FEATURE_NOT_FOUND"
	KindTypeMismatch    ErrorKind = "TYPE_MISMATCH"
	KindBoundInversion  ErrorKind = "BOUND_INVERSION"
	KindValidation      ErrorKind = "VALIDATION"
)

// Error is the structured failure of a decode or patch-apply operation.
// Every field beyond Kind and Message is optional and populated only when
// relevant to that Kind.
type Error struct {
	Kind     ErrorKind
	Message  string
	Path     string
	Feature  string
	Expected string
	Got      string
}

func (e *Error) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("parse: %s: %s (feature=%s)", e.Kind, e.Message, e.Feature)
	}
	return fmt.Sprintf("parse: %s: %s", e.Kind, e.Message)
}

// Warning is a non-fatal condition recorded alongside a successful decode,
// e.g. an unknown feature key discarded under SkipUnknownKeys.
type Warning struct {
	Message string
	Feature string
}

// Options controls decode leniency.
type Options struct {
	// SkipUnknownKeys discards flag entries whose key has no matching
	// FeatureDeclaration, and flag entries whose rules contain a targeting
	// node with an unrecognized kind tag, instead of failing the whole
	// decode, recording one Warning for each discarded flag entry.
	SkipUnknownKeys bool
}

// Result is the ParseResult<Configuration> sum type: exactly one of
// Configuration or Err is set. Warnings may be present on success.
type Result struct {
	Configuration *registry.Configuration
	Warnings      []Warning
	Err           *Error
}

// Ok reports whether the decode succeeded.
func (r Result) Ok() bool { return r.Err == nil }
