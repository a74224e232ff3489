package engine

import (
	"github.com/amichne/konditional/internal/bucket"
	"github.com/amichne/konditional/internal/flag"
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
)

// Source looks up the current definition for a feature id. internal/registry
// implements this over its atomic Configuration snapshot; tests may supply a
// plain map-backed fake.
type Source interface {
	Feature(featureId string) (*flag.FlagDefinition, bool)
}

// call carries the state of a single top-level evaluation: the source it
// reads from and the stack of feature ids currently being resolved, used to
// detect deferred-value cycles. A call is created fresh per Evaluate/Explain
// invocation and is never shared across goroutines, so the stack needs no
// locking despite being mutated during resolution.
type call struct {
	source Source
	stack  map[string]bool
}

func newCall(source Source) *call {
	return &call{source: source, stack: map[string]bool{}}
}

// Evaluate implements flag.Resolver, letting a Deferred rule value recurse
// into another feature through the same call (and therefore the same cycle
// guard).
func (c *call) Evaluate(featureId string, ctx targeting.Context) (ids.Value, error) {
	v, _, err := c.run(featureId, ctx)
	return v, err
}

func (c *call) run(featureId string, ctx targeting.Context) (ids.Value, EvaluationDiagnostics, error) {
	diag := EvaluationDiagnostics{FeatureId: featureId, Bucket: bucket.Missing, BucketMissing: true}

	def, ok := c.source.Feature(featureId)
	if !ok {
		diag.Reason = ReasonFeatureNotFound
		return ids.Value{}, diag, ErrFeatureNotFound
	}

	if c.stack[featureId] {
		diag.Reason = ReasonCycleDetected
		diag.SelectedDefault = true
		return def.DefaultValue, diag, nil
	}
	c.stack[featureId] = true
	defer delete(c.stack, featureId)

	if !def.IsActive {
		diag.Reason = ReasonRegistryDisabled
		diag.SelectedDefault = true
		return def.DefaultValue, diag, nil
	}

	sid := ctx.StableId()
	featureAllowlisted := def.InAllowlist(sid)

	for _, rule := range def.RulesByPrecedence() {
		if !rule.Targeting.Matches(ctx) {
			continue
		}

		if featureAllowlisted || rule.InAllowlist(sid) {
			diag.Reason = ReasonAllowlistBypass
			diag.SelectedRule = rule.Note
			v, err := rule.Value.Resolve(ctx, c)
			if err != nil {
				diag.Reason = ReasonTypeMismatch
				return def.DefaultValue, diag, nil
			}
			return v, diag, nil
		}

		b := bucket.Of(def.Salt, featureId, sid)
		if bucket.InRollout(b, rule.RampUp) {
			diag.Reason = ReasonTargetingMatch
			diag.SelectedRule = rule.Note
			diag.Bucket = b
			diag.BucketMissing = b == bucket.Missing
			v, err := rule.Value.Resolve(ctx, c)
			if err != nil {
				diag.Reason = ReasonTypeMismatch
				return def.DefaultValue, diag, nil
			}
			return v, diag, nil
		}

		diag.RolloutSkipped = append(diag.RolloutSkipped, RolloutSkip{RuleNote: rule.Note, Bucket: b})
	}

	diag.Reason = ReasonDefaultRollout
	diag.SelectedDefault = true
	return def.DefaultValue, diag, nil
}

// Evaluate selects and returns feature's value for ctx against source. It is
// total: a missing feature yields the zero ids.Value and ErrFeatureNotFound,
// every other condition (inactive feature, rollout skip, cycle) resolves to
// a value without error.
func Evaluate(source Source, featureId string, ctx targeting.Context) (ids.Value, error) {
	v, _, err := newCall(source).run(featureId, ctx)
	return v, err
}

// Outcome is the total, never-panicking result of EvaluateSafely: Ok is
// false when featureId has no declaration in source or when evaluation
// panicked.
type Outcome struct {
	Value ids.Value
	Ok    bool
	Err   error
}

// EvaluateSafely never raises, converting any unexpected failure inside
// evaluation (including a recovered panic, which correct evaluation logic
// should never produce) into a Outcome with Ok=false rather than letting it
// propagate to the caller.
func EvaluateSafely(source Source, featureId string, ctx targeting.Context) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Ok: false}
		}
	}()
	v, err := Evaluate(source, featureId, ctx)
	if err != nil {
		return Outcome{Value: v, Ok: false, Err: err}
	}
	return Outcome{Value: v, Ok: true}
}

// Explain evaluates featureId for ctx and additionally returns the decision
// trace: the selected rule or default, the rampUp bucket, and every rule
// skipped by rollout before the final selection.
func Explain(source Source, featureId string, ctx targeting.Context) (ids.Value, EvaluationDiagnostics, error) {
	return newCall(source).run(featureId, ctx)
}
