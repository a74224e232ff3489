// Package bucket implements deterministic context bucketing for rollout
// gating: SHA-256 over salt:featureId:stableId, folded into one of 10,000
// buckets. It replaces the teacher's xxhash-based 0-99 bucketing (see
// DESIGN.md) with the exact algorithm the spec pins for
// cross-implementation determinism.
package bucket

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/amichne/konditional/internal/ids"
)

// Missing is the sentinel bucket used when a context has no StableId. It is
// chosen outside [0, TotalBuckets) so that InRollout must special-case it
// explicitly rather than accidentally falling inside a real bucket range.
const Missing = -1

// DefaultSalt is used when a feature definition's salt is empty.
const DefaultSalt = "v1"

// Of computes the bucket in [0, ids.TotalBuckets) for stableId under the
// given salt and featureId. If stableId is not present, it returns Missing.
//
// Hashing uses a fresh sha256.Sum256 call per invocation: no shared mutable
// digest state crosses goroutines.
func Of(salt, featureId string, stableId ids.StableId) int {
	if !stableId.Present() {
		return Missing
	}
	if salt == "" {
		salt = DefaultSalt
	}

	input := make([]byte, 0, len(salt)+len(featureId)+stableId2Len(stableId)+2)
	input = append(input, salt...)
	input = append(input, ':')
	input = append(input, featureId...)
	input = append(input, ':')
	input = append(input, stableId.String()...)

	digest := sha256.Sum256(input)
	prefix := binary.BigEndian.Uint32(digest[0:4])
	return int(prefix % ids.TotalBuckets)
}

func stableId2Len(id ids.StableId) int { return len(id.String()) }

// InRollout reports whether bucket falls within rampUp's admitted range.
// The Missing sentinel is never admitted below 100.0 rampUp, but is always
// admitted at exactly 100.0: a 100% rollout admits everyone, identified or
// not.
func InRollout(b int, rampUp ids.RampUp) bool {
	if b == Missing {
		return rampUp >= ids.RampUpMax
	}
	return b < rampUp.BucketThreshold()
}
