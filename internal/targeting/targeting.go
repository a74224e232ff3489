package targeting

import "github.com/amichne/konditional/internal/ids"

// Targeting is a composable predicate over a Context that carries an
// integer specificity score, used to order rules for precedence (see the
// flag package).
type Targeting interface {
	// Specificity is Always -> 0; Locale/Platform/VersionRange(bounded)/
	// ExtensionPredicate -> 1 each; All -> sum of children.
	Specificity() int
	// Matches reports whether ctx satisfies this targeting node. It never
	// errors: a missing capability means "does not match", not a fault.
	Matches(ctx Context) bool
}

// Always matches every context and contributes zero specificity.
type Always struct{}

func (Always) Specificity() int        { return 0 }
func (Always) Matches(_ Context) bool  { return true }

// Locale matches contexts whose declared locale is a member of Set.
type Locale struct {
	Set ids.LocaleSet
}

func (Locale) Specificity() int { return 1 }

func (l Locale) Matches(ctx Context) bool {
	v, ok := ctx.Locale()
	if !ok {
		return false
	}
	return l.Set.Contains(v)
}

// PlatformTargeting matches contexts whose declared platform is a member of
// Set. Named PlatformTargeting (not Platform) to avoid colliding with
// ids.Platform.
type PlatformTargeting struct {
	Set ids.PlatformSet
}

func (PlatformTargeting) Specificity() int { return 1 }

func (p PlatformTargeting) Matches(ctx Context) bool {
	v, ok := ctx.Platform()
	if !ok {
		return false
	}
	return p.Set.Contains(v)
}

// VersionRangeKind discriminates the four VersionRange shapes.
type VersionRangeKind string

const (
	VersionUnbounded  VersionRangeKind = "UNBOUNDED"
	VersionLeftBound  VersionRangeKind = "LEFT_BOUND"
	VersionRightBound VersionRangeKind = "RIGHT_BOUND"
	VersionFullyBound VersionRangeKind = "FULLY_BOUND"
)

// VersionRangeTargeting matches contexts whose declared appVersion satisfies
// the configured bounds, inclusive at both ends.
type VersionRangeTargeting struct {
	Kind VersionRangeKind
	Min  ids.Version
	Max  ids.Version
}

// UnboundedVersionRange matches any declared app version.
func UnboundedVersionRange() VersionRangeTargeting {
	return VersionRangeTargeting{Kind: VersionUnbounded}
}

// LeftBoundVersionRange matches app versions >= min.
func LeftBoundVersionRange(min ids.Version) VersionRangeTargeting {
	return VersionRangeTargeting{Kind: VersionLeftBound, Min: min}
}

// RightBoundVersionRange matches app versions <= max.
func RightBoundVersionRange(max ids.Version) VersionRangeTargeting {
	return VersionRangeTargeting{Kind: VersionRightBound, Max: max}
}

// FullyBoundVersionRange matches min <= appVersion <= max. It returns an
// error if min > max.
func FullyBoundVersionRange(min, max ids.Version) (VersionRangeTargeting, error) {
	if max.Less(min) {
		return VersionRangeTargeting{}, ErrBoundInversion
	}
	return VersionRangeTargeting{Kind: VersionFullyBound, Min: min, Max: max}, nil
}

func (VersionRangeTargeting) Specificity() int { return 1 }

func (r VersionRangeTargeting) Matches(ctx Context) bool {
	v, ok := ctx.AppVersion()
	if !ok {
		return false
	}
	switch r.Kind {
	case VersionUnbounded:
		return true
	case VersionLeftBound:
		return !v.Less(r.Min)
	case VersionRightBound:
		return !r.Max.Less(v)
	case VersionFullyBound:
		return !v.Less(r.Min) && !r.Max.Less(v)
	default:
		return false
	}
}

// ExtensionTargeting delegates matching to an opaque Predicate, letting
// collaborators outside the core (authoring DSLs, rule builders) supply
// domain-specific conditions without the core knowing their shape.
type ExtensionTargeting struct {
	Predicate Predicate
}

func (ExtensionTargeting) Specificity() int { return 1 }

func (e ExtensionTargeting) Matches(ctx Context) bool {
	for _, cap := range e.Predicate.RequiredCapabilities() {
		if !ctx.Has(cap) {
			return false
		}
	}
	matched, _ := e.Predicate.Eval(ctx)
	return matched
}

// All composes children with AND semantics; its specificity is the sum of
// its children's specificity.
type All struct {
	Children []Targeting
}

func (a All) Specificity() int {
	total := 0
	for _, c := range a.Children {
		total += c.Specificity()
	}
	return total
}

func (a All) Matches(ctx Context) bool {
	for _, c := range a.Children {
		if !c.Matches(ctx) {
			return false
		}
	}
	return true
}
