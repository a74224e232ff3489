package parse

import "encoding/json"

// wireConfiguration mirrors the root configuration JSON object: an optional
// metadata envelope and the authoring-order list of flag entries.
type wireConfiguration struct {
	Metadata *wireMetadata `json:"metadata,omitempty"`
	Flags    []wireFlag    `json:"flags"`
}

type wireMetadata struct {
	Version string `json:"version,omitempty"`
}

type wireFlag struct {
	Key          string          `json:"key"`
	Type         string          `json:"type"`
	DefaultValue json.RawMessage `json:"defaultValue"`
	Salt         string          `json:"salt,omitempty"`
	IsActive     *bool           `json:"isActive,omitempty"`
	Allowlist    []string        `json:"allowlist,omitempty"`
	Rules        []wireRule      `json:"rules,omitempty"`
}

type wireRule struct {
	Value     json.RawMessage `json:"value"`
	RampUp    float64         `json:"rampUp"`
	Note      string          `json:"note,omitempty"`
	Targeting wireTargeting   `json:"targeting"`
	Allowlist []string        `json:"allowlist,omitempty"`
}

// wireTargeting is a tag-per-variant discriminated union. Only the fields
// relevant to Kind are populated; the rest are left zero.
type wireTargeting struct {
	Kind      string          `json:"kind"`
	Locales   []string        `json:"locales,omitempty"`
	Platforms []string        `json:"platforms,omitempty"`
	Min       *string         `json:"min,omitempty"`
	Max       *string         `json:"max,omitempty"`
	Children  []wireTargeting `json:"children,omitempty"`

	// extension-only fields
	Strategy             string          `json:"strategy,omitempty"`
	Expression           json.RawMessage `json:"expression,omitempty"`
	RequiredCapabilities []string        `json:"requiredCapabilities,omitempty"`
	Property             string          `json:"property,omitempty"`
	Operator             string          `json:"operator,omitempty"`
	Value                json.RawMessage `json:"value,omitempty"`
}

// wirePatch mirrors ConfigurationPatch's wire form: a partial flags list to
// add/replace plus a top-level key list to remove.
type wirePatch struct {
	Metadata   *wireMetadata `json:"metadata,omitempty"`
	Flags      []wireFlag    `json:"flags,omitempty"`
	RemoveKeys []string      `json:"removeKeys,omitempty"`
}
