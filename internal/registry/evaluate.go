package registry

import (
	"github.com/amichne/konditional/internal/engine"
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
)

// Evaluate returns featureId's value for ctx against the registry's current
// Configuration. An override set via SetOverride takes precedence over
// every rule and the default, per the registry's test/operator override
// contract.
func (r *Registry) Evaluate(featureId string, ctx targeting.Context) (ids.Value, error) {
	if v, ok := r.Override(featureId); ok {
		return v, nil
	}
	return engine.Evaluate(r, featureId, ctx)
}

// EvaluateSafely is Evaluate's never-raising counterpart, honoring
// overrides the same way.
func (r *Registry) EvaluateSafely(featureId string, ctx targeting.Context) engine.Outcome {
	if v, ok := r.Override(featureId); ok {
		return engine.Outcome{Value: v, Ok: true}
	}
	return engine.EvaluateSafely(r, featureId, ctx)
}

// Explain is Evaluate's decision-trace counterpart. An active override
// short-circuits evaluation entirely; the returned diagnostics reflect that.
func (r *Registry) Explain(featureId string, ctx targeting.Context) (ids.Value, engine.EvaluationDiagnostics, error) {
	if v, ok := r.Override(featureId); ok {
		return v, engine.EvaluationDiagnostics{FeatureId: featureId, Reason: engine.ReasonOverride, SelectedDefault: false}, nil
	}
	return engine.Explain(r, featureId, ctx)
}

// EvaluateWithShadow evaluates featureId against this registry (the
// baseline) and candidate (another registry, typically holding a proposed
// configuration) for the same context, returning the baseline value and
// reporting any mismatch.
func (r *Registry) EvaluateWithShadow(candidate *Registry, featureId string, ctx targeting.Context) (ids.Value, *engine.ShadowMismatch) {
	return engine.EvaluateWithShadow(r, candidate, featureId, ctx)
}
