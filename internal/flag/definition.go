package flag

import (
	"errors"
	"sort"

	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
)

// ErrTypeMismatch is returned when a rule or default value's declared type
// disagrees with the feature's declared type.
var ErrTypeMismatch = errors.New("flag: value type does not match feature declaration")

// FlagDefinition is the concrete, snapshot-time state of a feature: its
// rules, default, salt, active flag, and allowlist. It is immutable once
// constructed; rebuilding (e.g. on a registry patch) produces a new value.
type FlagDefinition struct {
	FeatureId    string
	Type         ids.ValueType
	DefaultValue ids.Value
	Salt         string
	IsActive     bool
	Allowlist    map[string]struct{} // StableId strings, feature-level bypass

	// rules is stored in the stable precedence order: primary key
	// descending specificity, secondary key ascending insertion index.
	rules []Rule
}

// New validates and constructs a FlagDefinition. rules are given in
// authoring order; New assigns each an insertion index and stores the list
// pre-sorted by precedence. Eager rule values and the default must match
// valueType; deferred values are checked at resolution time instead, since
// their type cannot be known until evaluated.
func New(featureId string, valueType ids.ValueType, defaultValue ids.Value, rules []Rule, salt string, isActive bool, allowlist []string) (*FlagDefinition, error) {
	if defaultValue.Type() != valueType {
		return nil, ErrTypeMismatch
	}

	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	for i := range ordered {
		ordered[i].insertionIndex = i
		if !ordered[i].Value.IsDeferred() {
			eager, err := ordered[i].Value.Resolve(targeting.Context{}, nil)
			if err == nil && eager.Type() != valueType {
				return nil, ErrTypeMismatch
			}
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := ordered[i].Specificity(), ordered[j].Specificity()
		if si != sj {
			return si > sj
		}
		return ordered[i].insertionIndex < ordered[j].insertionIndex
	})

	allow := make(map[string]struct{}, len(allowlist))
	for _, a := range allowlist {
		allow[a] = struct{}{}
	}
	if salt == "" {
		salt = "v1"
	}

	return &FlagDefinition{
		FeatureId:    featureId,
		Type:         valueType,
		DefaultValue: defaultValue,
		Salt:         salt,
		IsActive:     isActive,
		Allowlist:    allow,
		rules:        ordered,
	}, nil
}

// RulesByPrecedence returns the feature's rules ordered by (desc
// specificity, asc insertion index).
func (f *FlagDefinition) RulesByPrecedence() []Rule {
	out := make([]Rule, len(f.rules))
	copy(out, f.rules)
	return out
}

// InAllowlist reports whether id is present in the feature-level allowlist.
func (f *FlagDefinition) InAllowlist(id ids.StableId) bool {
	if !id.Present() || len(f.Allowlist) == 0 {
		return false
	}
	_, ok := f.Allowlist[id.String()]
	return ok
}
