package targeting

import (
	"testing"

	"github.com/amichne/konditional/internal/ids"
)

func TestJSONLogicPredicate_Evaluate(t *testing.T) {
	pred, err := NewJSONLogicPredicate(`{"==": [{"var": "plan"}, "premium"]}`, ids.CapabilityAxisValues)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := NewContext().WithAxisValue("plan", "premium")
	matched, ok := pred.Eval(ctx)
	if !ok || !matched {
		t.Errorf("expected match, got matched=%v ok=%v", matched, ok)
	}

	ctx2 := NewContext().WithAxisValue("plan", "free")
	matched2, ok2 := pred.Eval(ctx2)
	if !ok2 || matched2 {
		t.Errorf("expected no match for free plan, got matched=%v ok=%v", matched2, ok2)
	}
}

func TestJSONLogicPredicate_EmptyExpression(t *testing.T) {
	if _, err := NewJSONLogicPredicate("   "); err != ErrEmptyExpression {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}
}

func TestJSONLogicPredicate_InvalidJSON(t *testing.T) {
	if _, err := NewJSONLogicPredicate("not json"); err != ErrInvalidExpression {
		t.Fatalf("expected ErrInvalidExpression, got %v", err)
	}
}

func TestJSONLogicPredicate_UndefinedVariableIsFalsy(t *testing.T) {
	pred, err := NewJSONLogicPredicate(`{"==": [{"var": "nonexistent"}, "x"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matched, ok := pred.Eval(NewContext())
	if !ok || matched {
		t.Errorf("expected falsy match for undefined variable, got matched=%v ok=%v", matched, ok)
	}
}
