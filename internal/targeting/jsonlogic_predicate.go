package targeting

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/amichne/konditional/internal/ids"
	"github.com/diegoholiveira/jsonlogic/v3"
)

// ErrInvalidExpression is returned when an expression is not valid JSON
// Logic (jsonlogic.com).
var ErrInvalidExpression = errors.New("targeting: invalid expression: not valid JSON Logic")

// ErrEmptyExpression is returned when an expression is empty or whitespace.
var ErrEmptyExpression = errors.New("targeting: invalid expression: empty or whitespace")

// JSONLogicPredicate evaluates a JSON Logic expression (jsonlogic.com)
// against a Context's declared axis values, stable id, locale, platform, and
// app version, following JavaScript-like truthiness for the result.
//
// Example: {"==": [{"var": "plan"}, "premium"]} matches when the "plan" axis
// equals "premium".
type JSONLogicPredicate struct {
	expression string
	requires   []ids.Capability
}

// NewJSONLogicPredicate validates expression as JSON Logic and returns a
// predicate that requires the given capabilities before it is evaluated
// (the author declares which of the expression's variables come from
// required Context capabilities).
func NewJSONLogicPredicate(expression string, requires ...ids.Capability) (*JSONLogicPredicate, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}

	var rule any
	if err := json.Unmarshal([]byte(expression), &rule); err != nil {
		return nil, ErrInvalidExpression
	}

	var buf bytes.Buffer
	if err := jsonlogic.Apply(strings.NewReader(expression), strings.NewReader("{}"), &buf); err != nil {
		return nil, ErrInvalidExpression
	}

	return &JSONLogicPredicate{expression: expression, requires: requires}, nil
}

// RequiredCapabilities implements Predicate.
func (p *JSONLogicPredicate) RequiredCapabilities() []ids.Capability { return p.requires }

// Expression returns the raw JSON Logic expression, for callers (the parse
// boundary's encoder) that need to serialize the predicate back to wire
// form.
func (p *JSONLogicPredicate) Expression() string { return p.expression }

// Eval implements Predicate.
func (p *JSONLogicPredicate) Eval(ctx Context) (bool, bool) {
	data := buildLogicData(ctx)

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return false, false
	}

	var resultBuf bytes.Buffer
	if err := jsonlogic.Apply(strings.NewReader(p.expression), bytes.NewReader(dataBytes), &resultBuf); err != nil {
		return false, false
	}

	var result any
	if err := json.Unmarshal(resultBuf.Bytes(), &result); err != nil {
		return false, false
	}

	return isTruthy(result), true
}

func buildLogicData(ctx Context) map[string]any {
	data := ctx.AxisValues()
	if data == nil {
		data = make(map[string]any)
	}
	if id := ctx.StableId(); id.Present() {
		data["stableId"] = id.String()
	}
	if l, ok := ctx.Locale(); ok {
		data["locale"] = string(l)
	}
	if p, ok := ctx.Platform(); ok {
		data["platform"] = string(p)
	}
	if v, ok := ctx.AppVersion(); ok {
		data["appVersion"] = v.String()
	}
	return data
}

// isTruthy follows JavaScript-like truthiness: non-zero numbers, non-empty
// strings/arrays/objects, and boolean true are truthy.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
