package targeting

import (
	"testing"

	"github.com/amichne/konditional/internal/ids"
)

func TestOperatorPredicate_Equals(t *testing.T) {
	p := OperatorPredicate{Property: "plan", Operator: OpEquals, Value: "premium"}
	matched, ok := p.Eval(NewContext().WithAxisValue("plan", "premium"))
	if !ok || !matched {
		t.Errorf("expected equals match, got matched=%v ok=%v", matched, ok)
	}
}

func TestOperatorPredicate_NumericCompare(t *testing.T) {
	p := OperatorPredicate{Property: "age", Operator: OpGTE, Value: 18.0}
	adult := NewContext().WithAxisValue("age", 21.0)
	minor := NewContext().WithAxisValue("age", 12.0)

	if matched, ok := p.Eval(adult); !ok || !matched {
		t.Errorf("expected 21 >= 18, got matched=%v ok=%v", matched, ok)
	}
	if matched, ok := p.Eval(minor); !ok || matched {
		t.Errorf("expected 12 < 18 to not match, got matched=%v ok=%v", matched, ok)
	}
}

func TestOperatorPredicate_InList(t *testing.T) {
	p := OperatorPredicate{Property: "country", Operator: OpInList, Value: []any{"US", "CA"}}
	if matched, ok := p.Eval(NewContext().WithAxisValue("country", "US")); !ok || !matched {
		t.Errorf("expected US to be in list, got matched=%v ok=%v", matched, ok)
	}
	if matched, ok := p.Eval(NewContext().WithAxisValue("country", "FR")); !ok || matched {
		t.Errorf("expected FR not to be in list, got matched=%v ok=%v", matched, ok)
	}
}

func TestOperatorPredicate_VersionCompare(t *testing.T) {
	p := OperatorPredicate{Property: "appversion", Operator: OpVersionGT, Value: "1.0.0"}
	v, err := ids.ParseVersion("2.0.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched, ok := p.Eval(NewContext().WithAppVersion(v)); !ok || !matched {
		t.Errorf("expected 2.0.0 > 1.0.0, got matched=%v ok=%v", matched, ok)
	}
}

func TestOperatorPredicate_MissingPropertyNeverMatches(t *testing.T) {
	p := OperatorPredicate{Property: "missing", Operator: OpEquals, Value: "x"}
	matched, ok := p.Eval(NewContext())
	if !ok || matched {
		t.Errorf("expected missing property to not match without error, got matched=%v ok=%v", matched, ok)
	}
}

func TestOperatorPredicate_RegexCaching(t *testing.T) {
	p := OperatorPredicate{Property: "email", Operator: OpRegex, Value: `^\w+@example\.com$`}
	for i := 0; i < 3; i++ {
		matched, ok := p.Eval(NewContext().WithAxisValue("email", "alice@example.com"))
		if !ok || !matched {
			t.Errorf("iteration %d: expected regex match, got matched=%v ok=%v", i, matched, ok)
		}
	}
}
