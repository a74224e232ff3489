// Package targeting implements the composable predicate-over-context model
// used to select rules: a tree of Targeting nodes, each carrying a
// specificity score, matched against an evaluation Context that declares
// only the capabilities it actually carries.
package targeting

import "github.com/amichne/konditional/internal/ids"

// Context is the immutable evaluation context passed to Matches. Only the
// capabilities actually set are considered "declared"; targeting that needs
// an undeclared capability simply does not match (never errors).
type Context struct {
	locale     ids.AppLocale
	hasLocale  bool
	platform   ids.Platform
	hasPlat    bool
	appVersion ids.Version
	hasVersion bool
	stableId   ids.StableId
	axisValues map[string]any
}

// NewContext returns an empty Context declaring no capabilities.
func NewContext() Context {
	return Context{}
}

// WithLocale returns a copy of c declaring the locale capability.
func (c Context) WithLocale(l ids.AppLocale) Context {
	c.locale, c.hasLocale = l, true
	return c
}

// WithPlatform returns a copy of c declaring the platform capability.
func (c Context) WithPlatform(p ids.Platform) Context {
	c.platform, c.hasPlat = p, true
	return c
}

// WithAppVersion returns a copy of c declaring the appVersion capability.
func (c Context) WithAppVersion(v ids.Version) Context {
	c.appVersion, c.hasVersion = v, true
	return c
}

// WithStableId returns a copy of c carrying the given StableId.
func (c Context) WithStableId(id ids.StableId) Context {
	c.stableId = id
	return c
}

// WithAxisValue returns a copy of c with one more axis value set. axisId
// must be unique per axis within a context; a repeated axisId overwrites
// the prior value.
func (c Context) WithAxisValue(axisId string, value any) Context {
	next := make(map[string]any, len(c.axisValues)+1)
	for k, v := range c.axisValues {
		next[k] = v
	}
	next[axisId] = value
	c.axisValues = next
	return c
}

// Locale returns the declared locale and whether it was declared.
func (c Context) Locale() (ids.AppLocale, bool) { return c.locale, c.hasLocale }

// Platform returns the declared platform and whether it was declared.
func (c Context) Platform() (ids.Platform, bool) { return c.platform, c.hasPlat }

// AppVersion returns the declared app version and whether it was declared.
func (c Context) AppVersion() (ids.Version, bool) { return c.appVersion, c.hasVersion }

// StableId returns the context's stable identity (may be ids.NoStableId).
func (c Context) StableId() ids.StableId { return c.stableId }

// AxisValue returns the value of a declared axis and whether it is present.
func (c Context) AxisValue(axisId string) (any, bool) {
	v, ok := c.axisValues[axisId]
	return v, ok
}

// AxisValues returns a copy of all declared axis values, used by extension
// predicates that need to inspect the whole axis set (e.g. JSON Logic).
func (c Context) AxisValues() map[string]any {
	out := make(map[string]any, len(c.axisValues))
	for k, v := range c.axisValues {
		out[k] = v
	}
	return out
}

// Has reports whether c declares the given capability.
func (c Context) Has(cap ids.Capability) bool {
	switch cap {
	case ids.CapabilityLocale:
		return c.hasLocale
	case ids.CapabilityPlatform:
		return c.hasPlat
	case ids.CapabilityAppVersion:
		return c.hasVersion
	case ids.CapabilityStableId:
		return c.stableId.Present()
	case ids.CapabilityAxisValues:
		return len(c.axisValues) > 0
	default:
		return false
	}
}
