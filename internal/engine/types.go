// Package engine implements the pure evaluation algorithm: given a feature
// definition, a context, and a way to resolve other features, it selects a
// rule by precedence, gates it with deterministic bucketing and allowlist
// bypass, and returns the chosen value. Evaluation never raises; every
// non-fatal condition is recorded as a diagnostic instead.
package engine

import (
	"errors"

	"github.com/amichne/konditional/internal/ids"
)

// ErrFeatureNotFound is returned when the requested feature id has no entry
// in the evaluated Source.
var ErrFeatureNotFound = errors.New("engine: feature not found")

// Mode selects how much evaluation reports back to the caller.
type Mode string

const (
	// ModeFast returns only the value.
	ModeFast Mode = "FAST"
	// ModeExplain returns the value plus EvaluationDiagnostics.
	ModeExplain Mode = "EXPLAIN"
	// ModeShadow evaluates a baseline and a candidate side by side.
	ModeShadow Mode = "SHADOW"
)

// Reason explains why evaluation returned the value it did.
type Reason string

const (
	ReasonFeatureNotFound Reason = "FEATURE_NOT_FOUND"
	ReasonRegistryDisabled Reason = "REGISTRY_DISABLED"
	ReasonAllowlistBypass  Reason = "ALLOWLIST_BYPASS"
	ReasonTargetingMatch   Reason = "TARGETING_MATCH"
	ReasonDefaultRollout   Reason = "DEFAULT_ROLLOUT"
	ReasonCycleDetected    Reason = "CYCLE_DETECTED"
	ReasonTypeMismatch     Reason = "TYPE_MISMATCH"
	ReasonOverride         Reason = "OVERRIDE"
)

// RolloutSkip records one rule whose targeting matched but whose rampUp
// bucket excluded the context, in evaluation order.
type RolloutSkip struct {
	RuleNote string
	Bucket   int
}

// EvaluationDiagnostics is the structured decision trace produced by
// ModeExplain: which rule (if any) was selected, the bucket computed for
// rampUp gating, and every rule that matched targeting but was skipped by
// rollout before the final selection.
type EvaluationDiagnostics struct {
	FeatureId       string
	Reason          Reason
	SelectedRule    string // empty when the default was returned
	SelectedDefault bool
	Bucket          int
	BucketMissing   bool
	RolloutSkipped  []RolloutSkip
}

// ShadowMismatch records a divergence between a baseline and a candidate
// configuration's evaluation of the same feature and context, without
// changing which value is authoritative.
type ShadowMismatch struct {
	FeatureId          string
	ContextFingerprint uint64
	Baseline           ids.Value
	Candidate          ids.Value
}
