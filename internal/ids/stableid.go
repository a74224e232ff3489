// Package ids provides the identity, version, and value primitives shared by
// every other Konditional package: stable identifiers, semantic versions,
// rollout percentages, locale/platform tags, and the small tagged union used
// to carry a feature's runtime value.
package ids

import (
	"errors"
	"strings"
)

// ErrInvalidStableId is returned when a raw string fails hex-form validation.
var ErrInvalidStableId = errors.New("ids: invalid stable id")

// StableId is the caller-provided identity used to compute a bucket for
// rollout decisions. The zero value represents "no identity".
type StableId struct {
	raw     string
	present bool
}

// NoStableId is the zero-value StableId representing a context with no
// caller identity.
var NoStableId = StableId{}

// StableIdOf normalizes raw with a locale-invariant case fold and validates
// it as an even-length hex string. It fails with ErrInvalidStableId for
// anything else.
func StableIdOf(raw string) (StableId, error) {
	normalized := foldCase(raw)
	if len(normalized)%2 != 0 {
		return StableId{}, ErrInvalidStableId
	}
	for _, r := range normalized {
		if !isHexDigit(r) {
			return StableId{}, ErrInvalidStableId
		}
	}
	return StableId{raw: normalized, present: true}, nil
}

// StableIdOfOpaque accepts an already-normalized identity key without hex
// validation, for non-hex identity schemes.
func StableIdOfOpaque(raw string) StableId {
	return StableId{raw: raw, present: raw != ""}
}

// Present reports whether this StableId carries an identity at all.
func (s StableId) Present() bool { return s.present }

// String returns the normalized identity, or "" if not present.
func (s StableId) String() string { return s.raw }

// Equal reports whether two StableId values refer to the same identity.
func (s StableId) Equal(other StableId) bool {
	return s.present == other.present && s.raw == other.raw
}

func foldCase(raw string) string {
	// Locale-invariant: strings.ToLower uses Unicode case folding rules that
	// are not locale-sensitive for ASCII hex digits, unlike e.g. the Turkish
	// "I" rules a locale-aware fold would apply.
	return strings.ToLower(raw)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
