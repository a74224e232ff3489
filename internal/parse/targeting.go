package parse

import (
	"encoding/json"
	"sort"

	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/targeting"
)

func decodeTargeting(w wireTargeting, opts Options, feature string) (targeting.Targeting, *Warning, *Error) {
	switch w.Kind {
	case "always":
		return targeting.Always{}, nil, nil

	case "locale":
		locales := make([]ids.AppLocale, 0, len(w.Locales))
		for _, l := range w.Locales {
			locales = append(locales, ids.AppLocale(l))
		}
		return targeting.Locale{Set: ids.NewLocaleSet(locales...)}, nil, nil

	case "platform":
		platforms := make([]ids.Platform, 0, len(w.Platforms))
		for _, p := range w.Platforms {
			platforms = append(platforms, ids.Platform(p))
		}
		return targeting.PlatformTargeting{Set: ids.NewPlatformSet(platforms...)}, nil, nil

	case "version":
		return decodeVersionRange(w, feature)

	case "all":
		children := make([]targeting.Targeting, 0, len(w.Children))
		var firstWarn *Warning
		for _, c := range w.Children {
			child, warn, err := decodeTargeting(c, opts, feature)
			if err != nil {
				return nil, nil, err
			}
			if child != nil {
				children = append(children, child)
			}
			if warn != nil && firstWarn == nil {
				firstWarn = warn
			}
		}
		return targeting.All{Children: children}, firstWarn, nil

	case "extension":
		return decodeExtension(w, feature)

	default:
		if opts.SkipUnknownKeys {
			return targeting.Always{}, &Warning{Message: "unknown targeting kind " + w.Kind, Feature: feature}, nil
		}
		return nil, nil, &Error{Kind: KindInvalidSnapshot, Message: "unknown targeting kind " + w.Kind, Feature: feature}
	}
}

func decodeVersionRange(w wireTargeting, feature string) (targeting.Targeting, *Warning, *Error) {
	switch {
	case w.Min == nil && w.Max == nil:
		return targeting.UnboundedVersionRange(), nil, nil
	case w.Min != nil && w.Max == nil:
		min, perr := parseVersion(*w.Min, feature)
		if perr != nil {
			return nil, nil, perr
		}
		return targeting.LeftBoundVersionRange(min), nil, nil
	case w.Min == nil && w.Max != nil:
		max, perr := parseVersion(*w.Max, feature)
		if perr != nil {
			return nil, nil, perr
		}
		return targeting.RightBoundVersionRange(max), nil, nil
	default:
		min, perr := parseVersion(*w.Min, feature)
		if perr != nil {
			return nil, nil, perr
		}
		max, perr := parseVersion(*w.Max, feature)
		if perr != nil {
			return nil, nil, perr
		}
		rng, err := targeting.FullyBoundVersionRange(min, max)
		if err != nil {
			return nil, nil, &Error{Kind: KindBoundInversion, Message: err.Error(), Feature: feature}
		}
		return rng, nil, nil
	}
}

func parseVersion(raw, feature string) (ids.Version, *Error) {
	v, err := ids.ParseVersion(raw)
	if err != nil {
		return ids.Version{}, &Error{Kind: KindInvalidSnapshot, Message: "invalid version " + raw, Feature: feature}
	}
	return v, nil
}

func decodeExtension(w wireTargeting, feature string) (targeting.Targeting, *Warning, *Error) {
	switch w.Strategy {
	case "jsonlogic":
		caps := make([]ids.Capability, 0, len(w.RequiredCapabilities))
		for _, c := range w.RequiredCapabilities {
			caps = append(caps, ids.Capability(c))
		}
		pred, err := targeting.NewJSONLogicPredicate(string(w.Expression), caps...)
		if err != nil {
			return nil, nil, &Error{Kind: KindInvalidSnapshot, Message: err.Error(), Feature: feature}
		}
		return targeting.ExtensionTargeting{Predicate: pred}, nil, nil

	case "operator":
		var value any
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &value); err != nil {
				return nil, nil, &Error{Kind: KindInvalidSnapshot, Message: "invalid operator value", Feature: feature}
			}
		}
		pred := targeting.OperatorPredicate{
			Property: w.Property,
			Operator: targeting.Operator(w.Operator),
			Value:    value,
		}
		return targeting.ExtensionTargeting{Predicate: pred}, nil, nil

	default:
		return nil, nil, &Error{Kind: KindInvalidSnapshot, Message: "unknown extension strategy " + w.Strategy, Feature: feature}
	}
}

// encodeTargeting renders t back to its wire form. It supports exactly the
// Targeting and Predicate concretes decode can produce.
func encodeTargeting(t targeting.Targeting) (wireTargeting, error) {
	switch v := t.(type) {
	case targeting.Always:
		return wireTargeting{Kind: "always"}, nil

	case targeting.Locale:
		locales := make([]string, 0, len(v.Set))
		for l := range v.Set {
			locales = append(locales, string(l))
		}
		sort.Strings(locales)
		return wireTargeting{Kind: "locale", Locales: locales}, nil

	case targeting.PlatformTargeting:
		platforms := make([]string, 0, len(v.Set))
		for p := range v.Set {
			platforms = append(platforms, string(p))
		}
		sort.Strings(platforms)
		return wireTargeting{Kind: "platform", Platforms: platforms}, nil

	case targeting.VersionRangeTargeting:
		w := wireTargeting{Kind: "version"}
		switch v.Kind {
		case targeting.VersionLeftBound:
			min := v.Min.String()
			w.Min = &min
		case targeting.VersionRightBound:
			max := v.Max.String()
			w.Max = &max
		case targeting.VersionFullyBound:
			min, max := v.Min.String(), v.Max.String()
			w.Min, w.Max = &min, &max
		}
		return w, nil

	case targeting.All:
		children := make([]wireTargeting, 0, len(v.Children))
		for _, c := range v.Children {
			wc, err := encodeTargeting(c)
			if err != nil {
				return wireTargeting{}, err
			}
			children = append(children, wc)
		}
		return wireTargeting{Kind: "all", Children: children}, nil

	case targeting.ExtensionTargeting:
		return encodeExtension(v)

	default:
		return wireTargeting{}, &Error{Kind: KindInvalidSnapshot, Message: "unsupported targeting node for encoding"}
	}
}

func encodeExtension(e targeting.ExtensionTargeting) (wireTargeting, error) {
	switch p := e.Predicate.(type) {
	case *targeting.JSONLogicPredicate:
		caps := make([]string, 0, len(p.RequiredCapabilities()))
		for _, c := range p.RequiredCapabilities() {
			caps = append(caps, string(c))
		}
		sort.Strings(caps)
		return wireTargeting{
			Kind:                 "extension",
			Strategy:             "jsonlogic",
			Expression:           json.RawMessage(p.Expression()),
			RequiredCapabilities: caps,
		}, nil

	case targeting.OperatorPredicate:
		valueJSON, err := json.Marshal(p.Value)
		if err != nil {
			return wireTargeting{}, err
		}
		return wireTargeting{
			Kind:     "extension",
			Strategy: "operator",
			Property: p.Property,
			Operator: string(p.Operator),
			Value:    valueJSON,
		}, nil

	default:
		return wireTargeting{}, &Error{Kind: KindInvalidSnapshot, Message: "unsupported predicate type for encoding"}
	}
}
