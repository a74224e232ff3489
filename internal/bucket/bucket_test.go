package bucket

import (
	"fmt"
	"math"
	"testing"

	"github.com/amichne/konditional/internal/ids"
)

func hexId(t *testing.T, raw string) ids.StableId {
	t.Helper()
	id, err := ids.StableIdOf(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return id
}

func TestOf_Deterministic(t *testing.T) {
	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	b1 := Of("v1", "exp", id)
	b2 := Of("v1", "exp", id)
	if b1 != b2 {
		t.Fatalf("bucket not deterministic: %d vs %d", b1, b2)
	}
	if b1 < 0 || b1 >= ids.TotalBuckets {
		t.Fatalf("bucket out of range: %d", b1)
	}
}

func TestOf_MissingStableId(t *testing.T) {
	b := Of("v1", "exp", ids.NoStableId)
	if b != Missing {
		t.Fatalf("expected Missing sentinel, got %d", b)
	}
}

func TestOf_DifferentSaltChangesAssignment(t *testing.T) {
	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	counts := map[int]int{}
	for _, salt := range []string{"v1", "v2", "v3", "v4", "v5"} {
		counts[Of(salt, "exp", id)]++
	}
	if len(counts) < 2 {
		t.Fatalf("expected salts to produce varied buckets, got %v", counts)
	}
}

func TestInRollout_Boundaries(t *testing.T) {
	zero, _ := ids.RampUpOf(0)
	hundred, _ := ids.RampUpOf(100)

	if InRollout(0, zero) {
		t.Error("0% rampUp must never admit bucket 0")
	}
	if !InRollout(0, hundred) {
		t.Error("100% rampUp must admit bucket 0")
	}
	if !InRollout(9999, hundred) {
		t.Error("100% rampUp must admit bucket 9999")
	}
}

func TestInRollout_MissingStableId(t *testing.T) {
	zero, _ := ids.RampUpOf(0)
	fifty, _ := ids.RampUpOf(50)
	hundred, _ := ids.RampUpOf(100)

	if InRollout(Missing, zero) {
		t.Error("missing stable id must not be admitted at 0%")
	}
	if InRollout(Missing, fifty) {
		t.Error("missing stable id must not be admitted below 100%")
	}
	if !InRollout(Missing, hundred) {
		t.Error("missing stable id must be admitted at exactly 100%")
	}
}

func TestBucketingDistribution_ConvergesToRampUp(t *testing.T) {
	const n = 100_000
	const rampUpPct = 50.0
	rampUp, _ := ids.RampUpOf(rampUpPct)

	inCount := 0
	for i := 0; i < n; i++ {
		raw := fmt.Sprintf("%032x", i)
		id := hexId(t, raw)
		b := Of("v1", "exp", id)
		if InRollout(b, rampUp) {
			inCount++
		}
	}

	rate := float64(inCount) / float64(n)
	tolerance := 5 / math.Sqrt(n) // generous: several times the expected std error
	if math.Abs(rate-rampUpPct/100) > tolerance {
		t.Fatalf("empirical rate %.4f too far from expected %.4f (tolerance %.4f)", rate, rampUpPct/100, tolerance)
	}
}

func TestOf_FixedIdIsStableAcrossCalls(t *testing.T) {
	id := hexId(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	want := Of("v1", "exp", id)
	for i := 0; i < 10; i++ {
		if got := Of("v1", "exp", id); got != want {
			t.Fatalf("bucket drifted across calls: want %d got %d", want, got)
		}
	}
}
