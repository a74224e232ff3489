// Package flag defines the typed feature: its ordered rules, default value,
// salt, active flag, and allowlist (spec's FlagDefinition/Rule entities).
package flag

import (
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
)

// Resolver lets a Deferred rule value evaluate other features in the same
// registry. Implemented by internal/registry so that internal/flag does not
// need to import it (which would cycle).
type Resolver interface {
	Evaluate(featureId string, ctx targeting.Context) (ids.Value, error)
}

// DeferredFunc computes a rule's value from the evaluation context and a
// Resolver, for rules whose value depends on other features or on the
// context itself.
type DeferredFunc func(ctx targeting.Context, resolver Resolver) (ids.Value, error)

type ruleValueKind int

const (
	ruleValueEager ruleValueKind = iota
	ruleValueDeferred
)

// RuleValue is the explicit Eager(T) | Deferred(fn) union a rule's value
// holds. Eager values are returned directly; Deferred values invoke a
// closure with the evaluation context and a Resolver for cross-feature
// lookups, replacing the source's reflection-driven lazy field
// registration with an explicit, inspectable variant.
type RuleValue struct {
	kind     ruleValueKind
	eager    ids.Value
	deferred DeferredFunc
}

// Eager wraps a statically-known value.
func Eager(v ids.Value) RuleValue {
	return RuleValue{kind: ruleValueEager, eager: v}
}

// Deferred wraps a context-aware value computation.
func Deferred(f DeferredFunc) RuleValue {
	return RuleValue{kind: ruleValueDeferred, deferred: f}
}

// IsDeferred reports whether this RuleValue must be resolved via a closure.
func (r RuleValue) IsDeferred() bool { return r.kind == ruleValueDeferred }

// Resolve returns the rule's value: directly for Eager, or by invoking the
// deferred closure for Deferred.
func (r RuleValue) Resolve(ctx targeting.Context, resolver Resolver) (ids.Value, error) {
	if r.kind == ruleValueEager {
		return r.eager, nil
	}
	return r.deferred(ctx, resolver)
}

// Rule is a targeted, rolled-out mapping from matching contexts to a value.
type Rule struct {
	RampUp    ids.RampUp
	Note      string
	Targeting targeting.Targeting
	Value     RuleValue
	Allowlist map[string]struct{} // StableId strings, rule-level bypass

	// insertionIndex is the rule's position in authoring order, used as the
	// stable tiebreak in precedence ordering. It is set by New
	// and is not part of the rule's public construction surface, since
	// "insertion index" is meaningful only relative to a specific
	// FlagDefinition's rule list.
	insertionIndex int
}

// InAllowlist reports whether id is present in this rule's allowlist.
func (r Rule) InAllowlist(id ids.StableId) bool {
	if !id.Present() || len(r.Allowlist) == 0 {
		return false
	}
	_, ok := r.Allowlist[id.String()]
	return ok
}

// Specificity returns the rule's targeting specificity, used for precedence
// ordering.
func (r Rule) Specificity() int {
	if r.Targeting == nil {
		return 0
	}
	return r.Targeting.Specificity()
}

// InsertionIndex returns the rule's authoring-order position within its
// FlagDefinition.
func (r Rule) InsertionIndex() int { return r.insertionIndex }
