package targeting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/amichne/konditional/internal/ids"
)

// Operator is a comparison operator for OperatorPredicate.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpRegex      Operator = "regex"
	OpGT         Operator = "gt"
	OpLT         Operator = "lt"
	OpGTE        Operator = "gte"
	OpLTE        Operator = "lte"
	OpInList     Operator = "in_list"
	OpNotInList  Operator = "not_in_list"
	OpVersionGT  Operator = "version_gt"
	OpVersionLT  Operator = "version_lt"
)

// OperatorPredicate evaluates a single (property, operator, value)
// condition against a Context property: one of the built-in properties
// ("id"/"stableId", "locale", "platform", "appVersion") or an arbitrary
// axis value.
type OperatorPredicate struct {
	Property string
	Operator Operator
	Value    any
}

// RequiredCapabilities implements Predicate. Built-in properties map to
// their specific capability; anything else is read from axis values.
func (p OperatorPredicate) RequiredCapabilities() []ids.Capability {
	switch strings.ToLower(p.Property) {
	case "id", "stableid":
		return []ids.Capability{ids.CapabilityStableId}
	case "locale":
		return []ids.Capability{ids.CapabilityLocale}
	case "platform":
		return []ids.Capability{ids.CapabilityPlatform}
	case "appversion":
		return []ids.Capability{ids.CapabilityAppVersion}
	default:
		return []ids.Capability{ids.CapabilityAxisValues}
	}
}

// Eval implements Predicate.
func (p OperatorPredicate) Eval(ctx Context) (bool, bool) {
	value, ok := propertyValue(ctx, p.Property)
	if !ok {
		return false, true
	}
	handler, ok := operatorHandlers[p.Operator]
	if !ok {
		return false, false
	}
	return handler.Check(value, p.Value), true
}

func propertyValue(ctx Context, property string) (any, bool) {
	switch strings.ToLower(property) {
	case "id", "stableid":
		if id := ctx.StableId(); id.Present() {
			return id.String(), true
		}
		return nil, false
	case "locale":
		v, ok := ctx.Locale()
		if !ok {
			return nil, false
		}
		return string(v), true
	case "platform":
		v, ok := ctx.Platform()
		if !ok {
			return nil, false
		}
		return string(v), true
	case "appversion":
		v, ok := ctx.AppVersion()
		if !ok {
			return nil, false
		}
		return v.String(), true
	default:
		return ctx.AxisValue(property)
	}
}

type operatorHandler interface {
	Check(contextValue, ruleValue any) bool
}

var operatorHandlers = map[Operator]operatorHandler{
	OpEquals:     equalsHandler{},
	OpNotEquals:  notEqualsHandler{},
	OpContains:   containsHandler{},
	OpStartsWith: startsWithHandler{},
	OpEndsWith:   endsWithHandler{},
	OpRegex:      regexHandler{},
	OpGT:         numericCompareHandler{cmp: func(a, b float64) bool { return a > b }},
	OpLT:         numericCompareHandler{cmp: func(a, b float64) bool { return a < b }},
	OpGTE:        numericCompareHandler{cmp: func(a, b float64) bool { return a >= b }},
	OpLTE:        numericCompareHandler{cmp: func(a, b float64) bool { return a <= b }},
	OpInList:     inListHandler{},
	OpNotInList:  notInListHandler{},
	OpVersionGT:  semverCompareHandler{cmp: func(a, b *semver.Version) bool { return a.GreaterThan(b) }},
	OpVersionLT:  semverCompareHandler{cmp: func(a, b *semver.Version) bool { return a.LessThan(b) }},
}

type equalsHandler struct{}

func (equalsHandler) Check(a, b any) bool { return toString(a) == toString(b) }

type notEqualsHandler struct{}

func (notEqualsHandler) Check(a, b any) bool { return toString(a) != toString(b) }

type containsHandler struct{}

func (containsHandler) Check(a, b any) bool { return strings.Contains(toString(a), toString(b)) }

type startsWithHandler struct{}

func (startsWithHandler) Check(a, b any) bool { return strings.HasPrefix(toString(a), toString(b)) }

type endsWithHandler struct{}

func (endsWithHandler) Check(a, b any) bool { return strings.HasSuffix(toString(a), toString(b)) }

type regexHandler struct{}

// regexCache keeps compiled regex by pattern for the hot evaluation path.
var regexCache sync.Map

func (regexHandler) Check(a, b any) bool {
	pattern := toString(b)
	var re *regexp.Regexp
	if cached, ok := regexCache.Load(pattern); ok {
		re = cached.(*regexp.Regexp)
	} else {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		regexCache.Store(pattern, compiled)
		re = compiled
	}
	return re.MatchString(toString(a))
}

type numericCompareHandler struct {
	cmp func(a, b float64) bool
}

func (h numericCompareHandler) Check(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	return h.cmp(af, bf)
}

type inListHandler struct{}

func (inListHandler) Check(a, b any) bool { return memberOf(a, b) }

type notInListHandler struct{}

func (notInListHandler) Check(a, b any) bool { return !memberOf(a, b) }

func memberOf(a, b any) bool {
	list, ok := toSlice(b)
	if !ok {
		return false
	}
	target := toString(a)
	for _, item := range list {
		if toString(item) == target {
			return true
		}
	}
	return false
}

type semverCompareHandler struct {
	cmp func(a, b *semver.Version) bool
}

func (h semverCompareHandler) Check(a, b any) bool {
	av, aerr := semver.NewVersion(toString(a))
	bv, berr := semver.NewVersion(toString(b))
	if aerr != nil || berr != nil {
		return false
	}
	return h.cmp(av, bv)
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toSlice(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
