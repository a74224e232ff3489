package targeting

import "github.com/amichne/konditional/internal/ids"

// Predicate is the opaque condition wrapped by ExtensionTargeting. Its
// capability declaration lets ExtensionTargeting.Matches apply the "missing
// capability means no match, never an error" rule uniformly, regardless of
// which predicate implementation is in play.
type Predicate interface {
	// RequiredCapabilities lists the Context capabilities this predicate
	// reads. ExtensionTargeting checks these before calling Eval.
	RequiredCapabilities() []ids.Capability
	// Eval evaluates the predicate against ctx. matched is only meaningful
	// when ok is true; a predicate that errors internally (e.g. malformed
	// expression) reports ok=false rather than propagating an error, since
	// Targeting.Matches is total.
	Eval(ctx Context) (matched bool, ok bool)
}
