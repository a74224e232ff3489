package engine

import (
	"sort"
	"strconv"

	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
	"github.com/cespare/xxhash/v2"
)

// EvaluateWithShadow evaluates featureId against both baseline and candidate
// sources for the same context. It always returns baseline's value; when
// the two disagree it also returns a non-nil ShadowMismatch describing the
// divergence, for the caller to log or count without affecting behavior.
func EvaluateWithShadow(baseline, candidate Source, featureId string, ctx targeting.Context) (ids.Value, *ShadowMismatch) {
	baseVal, _ := Evaluate(baseline, featureId, ctx)
	candVal, err := Evaluate(candidate, featureId, ctx)
	if err != nil || baseVal.Equal(candVal) {
		return baseVal, nil
	}
	return baseVal, &ShadowMismatch{
		FeatureId:          featureId,
		ContextFingerprint: fingerprint(ctx),
		Baseline:           baseVal,
		Candidate:          candVal,
	}
}

// fingerprint hashes the declared capabilities of ctx into a single value
// suitable for correlating shadow mismatches without logging raw context
// contents. Axis values are sorted by key first so the digest is stable
// regardless of how the context was built up.
func fingerprint(ctx targeting.Context) uint64 {
	var buf []byte

	if l, ok := ctx.Locale(); ok {
		buf = append(buf, "locale:"...)
		buf = append(buf, l...)
		buf = append(buf, ';')
	}
	if p, ok := ctx.Platform(); ok {
		buf = append(buf, "platform:"...)
		buf = append(buf, p...)
		buf = append(buf, ';')
	}
	if v, ok := ctx.AppVersion(); ok {
		buf = append(buf, "version:"...)
		buf = append(buf, v.String()...)
		buf = append(buf, ';')
	}
	if sid := ctx.StableId(); sid.Present() {
		buf = append(buf, "stableId:"...)
		buf = append(buf, sid.String()...)
		buf = append(buf, ';')
	}

	axisValues := ctx.AxisValues()
	keys := make([]string, 0, len(axisValues))
	for k := range axisValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf = append(buf, "axis:"...)
		buf = append(buf, k...)
		buf = append(buf, '=')
		buf = append(buf, formatAxisValue(axisValues[k])...)
		buf = append(buf, ';')
	}

	return xxhash.Sum64(buf)
}

func formatAxisValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
