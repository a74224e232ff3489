// Package cli holds the output formatting shared by cmd/konditional's
// commands: the same decoded flags can be rendered as a table, JSON, or
// YAML depending on the list command's --output flag.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/amichne/konditional/internal/flag"
	"github.com/amichne/konditional/internal/registry"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how PrintFlags renders its argument.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// FlagSummary is the flattened, serialization-friendly view of a
// flag.FlagDefinition used by every output format.
type FlagSummary struct {
	Key          string `json:"key" yaml:"key"`
	Type         string `json:"type" yaml:"type"`
	Active       bool   `json:"active" yaml:"active"`
	DefaultValue any    `json:"defaultValue" yaml:"defaultValue"`
	RuleCount    int    `json:"ruleCount" yaml:"ruleCount"`
	Salt         string `json:"salt" yaml:"salt"`
}

// Summarize flattens c's features, sorted by id, into FlagSummary rows.
func Summarize(c *registry.Configuration) []FlagSummary {
	ids := c.FeatureIds()
	out := make([]FlagSummary, 0, len(ids))
	for _, id := range ids {
		def, ok := c.Feature(id)
		if !ok {
			continue
		}
		out = append(out, summarizeOne(def))
	}
	return out
}

func summarizeOne(def *flag.FlagDefinition) FlagSummary {
	return FlagSummary{
		Key:          def.FeatureId,
		Type:         string(def.Type),
		Active:       def.IsActive,
		DefaultValue: def.DefaultValue.Raw(),
		RuleCount:    len(def.RulesByPrecedence()),
		Salt:         def.Salt,
	}
}

// PrintFlags renders rows in the requested format to stdout.
func PrintFlags(rows []FlagSummary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(rows)
	case FormatYAML:
		return printYAML(rows)
	case FormatTable, "":
		return printTable(rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(rows []FlagSummary) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string][]FlagSummary{"flags": rows})
}

func printYAML(rows []FlagSummary) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(rows)
}

func printTable(rows []FlagSummary) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Key", "Type", "Active", "Default", "Rules", "Salt")

	for _, row := range rows {
		active := "false"
		if row.Active {
			active = "true"
		}
		table.Append(
			row.Key,
			row.Type,
			active,
			fmt.Sprintf("%v", row.DefaultValue),
			fmt.Sprintf("%d", row.RuleCount),
			row.Salt,
		)
	}

	return table.Render()
}
