package parse

import (
	"encoding/json"

	"github.com/amichne/konditional/internal/flag"
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/registry"
	"github.com/amichne/konditional/internal/validation"
)

// Decode parses data as a wireConfiguration and reconciles it against decls,
// returning a fully built registry.Configuration on success. Every flag
// entry's key must match a declared FeatureId and its wire type must match
// the declaration's Type; under opts.SkipUnknownKeys an unmatched key is
// discarded with a Warning instead of failing the decode.
func Decode(data []byte, decls Declarations, opts Options) Result {
	var w wireConfiguration
	if err := json.Unmarshal(data, &w); err != nil {
		return Result{Err: &Error{Kind: KindInvalidJson, Message: err.Error()}}
	}

	defs := make([]*flag.FlagDefinition, 0, len(w.Flags))
	var warnings []Warning

	for _, wf := range w.Flags {
		def, warn, perr := decodeFlag(wf, decls, opts)
		if perr != nil {
			return Result{Err: perr, Warnings: warnings}
		}
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}
		defs = append(defs, def)
	}

	metadata := registry.ConfigurationMetadata{}
	if w.Metadata != nil {
		metadata.Version = w.Metadata.Version
	}

	return Result{Configuration: registry.NewConfiguration(metadata, defs), Warnings: warnings}
}

// ApplyPatch parses data as a wirePatch and applies it to cur, returning the
// resulting Configuration. Entries in removeKeys are dropped first, then
// flags entries are added/replaced, matching ConfigurationPatch.ApplyTo's
// left-to-right composition.
func ApplyPatch(cur *registry.Configuration, data []byte, decls Declarations, opts Options) Result {
	var w wirePatch
	if err := json.Unmarshal(data, &w); err != nil {
		return Result{Err: &Error{Kind: KindInvalidJson, Message: err.Error()}}
	}

	add := make(map[string]*flag.FlagDefinition, len(w.Flags))
	var warnings []Warning

	for _, wf := range w.Flags {
		def, warn, perr := decodeFlag(wf, decls, opts)
		if perr != nil {
			return Result{Err: perr, Warnings: warnings}
		}
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}
		add[def.FeatureId] = def
	}

	remove := make(map[string]struct{}, len(w.RemoveKeys))
	for _, k := range w.RemoveKeys {
		remove[k] = struct{}{}
	}

	patch := registry.ConfigurationPatch{Add: add, Remove: remove}

	metadata := cur.Metadata
	if w.Metadata != nil {
		metadata.Version = w.Metadata.Version
	}

	return Result{Configuration: patch.ApplyTo(cur, metadata), Warnings: warnings}
}

func decodeFlag(wf wireFlag, decls Declarations, opts Options) (*flag.FlagDefinition, *Warning, *Error) {
	if keyCheck := validation.ValidateFeatureId(wf.Key); !keyCheck.Valid() {
		return nil, nil, &Error{Kind: KindValidation, Message: keyCheck.Errors["key"], Feature: wf.Key}
	}

	decl, ok := decls[wf.Key]
	if !ok {
		if opts.SkipUnknownKeys {
			return nil, &Warning{Message: "no declaration for feature", Feature: wf.Key}, nil
		}
		return nil, nil, &Error{Kind: KindFeatureNotFound, Message: "no declaration for feature", Feature: wf.Key}
	}

	valueType := ids.ValueType(wf.Type)
	if valueType != decl.Type {
		return nil, nil, &Error{
			Kind:     KindTypeMismatch,
			Message:  "declared type does not match feature declaration",
			Feature:  wf.Key,
			Expected: string(decl.Type),
			Got:      string(valueType),
		}
	}

	defaultValue, derr := decodeValue(wf.DefaultValue, valueType, decl.Fields, wf.Key)
	if derr != nil {
		return nil, nil, derr
	}

	rules := make([]flag.Rule, 0, len(wf.Rules))
	for _, wr := range wf.Rules {
		rule, warn, rerr := decodeRule(wr, valueType, decl.Fields, wf.Key, opts)
		if rerr != nil {
			return nil, nil, rerr
		}
		if warn != nil {
			return nil, warn, nil
		}
		rules = append(rules, rule)
	}

	isActive := true
	if wf.IsActive != nil {
		isActive = *wf.IsActive
	}

	def, err := flag.New(wf.Key, valueType, defaultValue, rules, wf.Salt, isActive, wf.Allowlist)
	if err != nil {
		return nil, nil, &Error{Kind: KindTypeMismatch, Message: err.Error(), Feature: wf.Key}
	}
	return def, nil, nil
}

func decodeRule(wr wireRule, valueType ids.ValueType, fields []ids.FieldSpec, feature string, opts Options) (flag.Rule, *Warning, *Error) {
	if noteCheck := validation.ValidateNote(wr.Note); !noteCheck.Valid() {
		return flag.Rule{}, nil, &Error{Kind: KindValidation, Message: noteCheck.Errors["note"], Feature: feature}
	}

	t, warn, terr := decodeTargeting(wr.Targeting, opts, feature)
	if terr != nil {
		return flag.Rule{}, nil, terr
	}
	if warn != nil {
		return flag.Rule{}, warn, nil
	}

	value, verr := decodeValue(wr.Value, valueType, fields, feature)
	if verr != nil {
		return flag.Rule{}, nil, verr
	}

	rampUp, err := ids.RampUpOf(wr.RampUp)
	if err != nil {
		return flag.Rule{}, nil, &Error{Kind: KindInvalidSnapshot, Message: err.Error(), Feature: feature}
	}

	allow := make(map[string]struct{}, len(wr.Allowlist))
	for _, a := range wr.Allowlist {
		allow[a] = struct{}{}
	}

	return flag.Rule{
		RampUp:    rampUp,
		Note:      wr.Note,
		Targeting: t,
		Value:     flag.Eager(value),
		Allowlist: allow,
	}, nil, nil
}
