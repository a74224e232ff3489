package engine

import (
	"testing"

	"github.com/amichne/konditional/internal/flag"
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
)

// mapSource is a plain map-backed Source for tests; internal/registry is the
// production implementation.
type mapSource map[string]*flag.FlagDefinition

func (m mapSource) Feature(featureId string) (*flag.FlagDefinition, bool) {
	d, ok := m[featureId]
	return d, ok
}

func mustDef(t *testing.T, featureId string, valueType ids.ValueType, def ids.Value, rules []flag.Rule) *flag.FlagDefinition {
	t.Helper()
	d, err := flag.New(featureId, valueType, def, rules, "", true, nil)
	if err != nil {
		t.Fatalf("unexpected error building %q: %v", featureId, err)
	}
	return d
}

func rampUp(t *testing.T, pct float64) ids.RampUp {
	t.Helper()
	r, err := ids.RampUpOf(pct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func hexId(t *testing.T, raw string) ids.StableId {
	t.Helper()
	id, err := ids.StableIdOf(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return id
}

func TestEvaluate_DefaultOnly(t *testing.T) {
	def := mustDef(t, "dark_mode", ids.TypeBoolean, ids.NewBool(false), nil)
	source := mapSource{"dark_mode": def}

	ctx := targeting.NewContext().
		WithLocale(ids.LocaleEnUS).
		WithPlatform(ids.PlatformIOS).
		WithStableId(hexId(t, "00000000000000000000000000000000"))

	v, err := Evaluate(source, "dark_mode", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Bool()
	if got != false {
		t.Errorf("expected false, got %v", got)
	}
}

func TestEvaluate_PlatformTargeting(t *testing.T) {
	rules := []flag.Rule{{
		RampUp:    rampUp(t, 100),
		Targeting: targeting.PlatformTargeting{Set: ids.NewPlatformSet(ids.PlatformIOS)},
		Value:     flag.Eager(ids.NewBool(true)),
	}}
	def := mustDef(t, "new_onboarding", ids.TypeBoolean, ids.NewBool(false), rules)
	source := mapSource{"new_onboarding": def}

	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")

	iosCtx := targeting.NewContext().WithPlatform(ids.PlatformIOS).WithStableId(id)
	v, err := Evaluate(source, "new_onboarding", iosCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Bool()
	if !got {
		t.Error("expected true on iOS")
	}

	androidCtx := targeting.NewContext().WithPlatform(ids.PlatformAndroid).WithStableId(id)
	v, err = Evaluate(source, "new_onboarding", androidCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = v.Bool()
	if got {
		t.Error("expected false on Android")
	}
}

func TestEvaluate_FixedIdStableAcrossCalls(t *testing.T) {
	rules := []flag.Rule{{
		RampUp:    rampUp(t, 50),
		Targeting: targeting.Always{},
		Value:     flag.Eager(ids.NewBool(true)),
	}}
	def := mustDef(t, "exp", ids.TypeBoolean, ids.NewBool(false), rules)
	source := mapSource{"exp": def}

	ctx := targeting.NewContext().WithStableId(hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"))

	want, err := Evaluate(source, "exp", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Evaluate(source, "exp", ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(want) {
			t.Fatalf("evaluation drifted across calls")
		}
	}
}

func TestEvaluate_SpecificityOverridesInsertionOrder(t *testing.T) {
	rules := []flag.Rule{
		{Note: "R1", RampUp: rampUp(t, 100), Targeting: targeting.Always{}, Value: flag.Eager(ids.NewString("A"))},
		{Note: "R2", RampUp: rampUp(t, 100), Targeting: targeting.PlatformTargeting{Set: ids.NewPlatformSet(ids.PlatformIOS)}, Value: flag.Eager(ids.NewString("B"))},
	}
	def := mustDef(t, "banner", ids.TypeString, ids.NewString("default"), rules)
	source := mapSource{"banner": def}

	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")

	iosCtx := targeting.NewContext().WithPlatform(ids.PlatformIOS).WithStableId(id)
	v, err := Evaluate(source, "banner", iosCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ := v.String()
	if s != "B" {
		t.Errorf("expected B on iOS (higher specificity), got %q", s)
	}

	androidCtx := targeting.NewContext().WithPlatform(ids.PlatformAndroid).WithStableId(id)
	v, err = Evaluate(source, "banner", androidCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ = v.String()
	if s != "A" {
		t.Errorf("expected A on Android, got %q", s)
	}
}

func TestEvaluate_AllowlistBypassesRollout(t *testing.T) {
	x := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	other := hexId(t, "f1f2f3f4f5f6f7f8f9f0f1f2f3f4f5f6")

	rules := []flag.Rule{{
		RampUp:    rampUp(t, 0),
		Targeting: targeting.PlatformTargeting{Set: ids.NewPlatformSet(ids.PlatformIOS)},
		Value:     flag.Eager(ids.NewBool(true)),
	}}
	def := mustDef(t, "vip_feature", ids.TypeBoolean, ids.NewBool(false), rules)
	def.Allowlist[x.String()] = struct{}{}
	source := mapSource{"vip_feature": def}

	xCtx := targeting.NewContext().WithPlatform(ids.PlatformIOS).WithStableId(x)
	v, err := Evaluate(source, "vip_feature", xCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Bool()
	if !got {
		t.Error("expected allowlisted id to bypass 0% rampUp")
	}

	otherCtx := targeting.NewContext().WithPlatform(ids.PlatformIOS).WithStableId(other)
	v, err = Evaluate(source, "vip_feature", otherCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = v.Bool()
	if got {
		t.Error("expected non-allowlisted id to stay gated at 0%")
	}
}

func TestEvaluate_FeatureNotFound(t *testing.T) {
	source := mapSource{}
	_, err := Evaluate(source, "missing", targeting.NewContext())
	if err != ErrFeatureNotFound {
		t.Fatalf("expected ErrFeatureNotFound, got %v", err)
	}
}

func TestEvaluate_InactiveFeatureReturnsDefault(t *testing.T) {
	rules := []flag.Rule{{
		RampUp:    rampUp(t, 100),
		Targeting: targeting.Always{},
		Value:     flag.Eager(ids.NewBool(true)),
	}}
	def, err := flag.New("off", ids.TypeBoolean, ids.NewBool(false), rules, "", false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	source := mapSource{"off": def}

	v, err := Evaluate(source, "off", targeting.NewContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Bool()
	if got {
		t.Error("expected inactive feature to return default, got true")
	}
}

func TestEvaluateSafely_NeverRaises(t *testing.T) {
	source := mapSource{}
	out := EvaluateSafely(source, "missing", targeting.NewContext())
	if out.Ok {
		t.Error("expected Ok=false for missing feature")
	}
	if out.Err != ErrFeatureNotFound {
		t.Errorf("expected ErrFeatureNotFound, got %v", out.Err)
	}
}

func TestExplain_ReportsSelectedRuleAndSkips(t *testing.T) {
	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	rules := []flag.Rule{
		{Note: "low-rollout", RampUp: rampUp(t, 0), Targeting: targeting.Always{}, Value: flag.Eager(ids.NewBool(true))},
		{Note: "full-rollout", RampUp: rampUp(t, 100), Targeting: targeting.Always{}, Value: flag.Eager(ids.NewBool(true))},
	}
	def := mustDef(t, "gated", ids.TypeBoolean, ids.NewBool(false), rules)
	source := mapSource{"gated": def}

	ctx := targeting.NewContext().WithStableId(id)
	v, diag, err := Explain(source, "gated", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Bool()
	if !got {
		t.Error("expected true from full-rollout rule")
	}
	if diag.Reason != ReasonTargetingMatch {
		t.Errorf("expected ReasonTargetingMatch, got %v", diag.Reason)
	}
	if diag.SelectedRule != "full-rollout" {
		t.Errorf("expected full-rollout selected, got %q", diag.SelectedRule)
	}
	if len(diag.RolloutSkipped) != 1 || diag.RolloutSkipped[0].RuleNote != "low-rollout" {
		t.Errorf("expected low-rollout recorded as skipped, got %v", diag.RolloutSkipped)
	}
}

func TestExplain_MissingStableIdDiagnostic(t *testing.T) {
	def := mustDef(t, "anon", ids.TypeBoolean, ids.NewBool(false), nil)
	source := mapSource{"anon": def}

	_, diag, err := Explain(source, "anon", targeting.NewContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diag.BucketMissing {
		t.Error("expected BucketMissing for a context with no stable id")
	}
}

func TestEvaluateWithShadow_ReturnsBaselineAndReportsMismatch(t *testing.T) {
	baselineDef := mustDef(t, "price", ids.TypeInt, ids.NewInt(10), nil)
	candidateDef := mustDef(t, "price", ids.TypeInt, ids.NewInt(20), nil)
	baseline := mapSource{"price": baselineDef}
	candidate := mapSource{"price": candidateDef}

	ctx := targeting.NewContext().WithStableId(hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"))
	v, mismatch := EvaluateWithShadow(baseline, candidate, "price", ctx)

	got, _ := v.Int()
	if got != 10 {
		t.Errorf("expected baseline value 10, got %d", got)
	}
	if mismatch == nil {
		t.Fatal("expected a mismatch to be reported")
	}
	if mismatch.FeatureId != "price" {
		t.Errorf("unexpected feature id %q", mismatch.FeatureId)
	}
	base, _ := mismatch.Baseline.Int()
	cand, _ := mismatch.Candidate.Int()
	if base != 10 || cand != 20 {
		t.Errorf("unexpected mismatch values: baseline=%d candidate=%d", base, cand)
	}
}

func TestEvaluateWithShadow_NoMismatchWhenEqual(t *testing.T) {
	def := mustDef(t, "price", ids.TypeInt, ids.NewInt(10), nil)
	source := mapSource{"price": def}

	ctx := targeting.NewContext().WithStableId(hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"))
	_, mismatch := EvaluateWithShadow(source, source, "price", ctx)
	if mismatch != nil {
		t.Errorf("expected no mismatch, got %+v", mismatch)
	}
}

func TestEvaluate_CycleDetected(t *testing.T) {
	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	var source mapSource

	ruleA := []flag.Rule{{
		RampUp:    rampUp(t, 100),
		Targeting: targeting.Always{},
		Value: flag.Deferred(func(ctx targeting.Context, r flag.Resolver) (ids.Value, error) {
			return r.Evaluate("b", ctx)
		}),
	}}
	ruleB := []flag.Rule{{
		RampUp:    rampUp(t, 100),
		Targeting: targeting.Always{},
		Value: flag.Deferred(func(ctx targeting.Context, r flag.Resolver) (ids.Value, error) {
			return r.Evaluate("a", ctx)
		}),
	}}

	defA := mustDef(t, "a", ids.TypeBoolean, ids.NewBool(false), ruleA)
	defB := mustDef(t, "b", ids.TypeBoolean, ids.NewBool(false), ruleB)
	source = mapSource{"a": defA, "b": defB}

	ctx := targeting.NewContext().WithStableId(id)
	v, diag, err := Explain(source, "a", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Bool()
	if got {
		t.Error("expected a cycled deferred chain to fall back to a's default (false)")
	}
	_ = diag
}
