package parse

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/amichne/konditional/internal/flag"
	"github.com/amichne/konditional/internal/registry"
	"github.com/amichne/konditional/internal/targeting"
)

// ErrDeferredValue is returned by Encode when a rule's value is a Deferred
// closure, which has no wire representation.
var ErrDeferredValue = errors.New("parse: cannot encode a deferred rule value")

// Encode renders c back to its canonical wire JSON: feature ids sorted,
// rules in precedence order, so that two Configurations with the same
// content always produce byte-identical output.
func Encode(c *registry.Configuration) ([]byte, error) {
	w := wireConfiguration{}
	if c.Metadata.Version != "" || c.Metadata.SnapshotId != "" {
		w.Metadata = &wireMetadata{Version: c.Metadata.Version}
	}

	for _, id := range c.FeatureIds() {
		def, _ := c.Feature(id)
		wf, err := encodeFlag(def)
		if err != nil {
			return nil, err
		}
		w.Flags = append(w.Flags, wf)
	}

	return json.Marshal(w)
}

func encodeFlag(def *flag.FlagDefinition) (wireFlag, error) {
	defaultValue, err := encodeValue(def.DefaultValue)
	if err != nil {
		return wireFlag{}, err
	}

	isActive := def.IsActive
	wf := wireFlag{
		Key:          def.FeatureId,
		Type:         string(def.Type),
		DefaultValue: defaultValue,
		Salt:         def.Salt,
		IsActive:     &isActive,
		Allowlist:    sortedKeys(def.Allowlist),
	}

	for _, rule := range def.RulesByPrecedence() {
		wr, err := encodeRule(rule)
		if err != nil {
			return wireFlag{}, err
		}
		wf.Rules = append(wf.Rules, wr)
	}

	return wf, nil
}

func encodeRule(rule flag.Rule) (wireRule, error) {
	if rule.Value.IsDeferred() {
		return wireRule{}, ErrDeferredValue
	}
	value, err := rule.Value.Resolve(targeting.Context{}, nil)
	if err != nil {
		return wireRule{}, err
	}
	encodedValue, err := encodeValue(value)
	if err != nil {
		return wireRule{}, err
	}
	wt, err := encodeTargeting(rule.Targeting)
	if err != nil {
		return wireRule{}, err
	}
	return wireRule{
		Value:     encodedValue,
		RampUp:    float64(rule.RampUp),
		Note:      rule.Note,
		Targeting: wt,
		Allowlist: sortedKeys(rule.Allowlist),
	}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
