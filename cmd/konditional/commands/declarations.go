package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/parse"
)

// wireFeatureDeclaration is the on-disk shape of one ids.FeatureDeclaration
// entry in a declarations file.
type wireFeatureDeclaration struct {
	FeatureId string           `json:"featureId"`
	Type      string           `json:"type"`
	Fields    []wireFieldSpec  `json:"fields,omitempty"`
}

type wireFieldSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// loadDeclarations reads a declarations file (a JSON array of
// wireFeatureDeclaration entries) and returns it as a parse.Declarations set.
func loadDeclarations(path string) (parse.Declarations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declarations file: %w", err)
	}

	var entries []wireFeatureDeclaration
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse declarations file: %w", err)
	}

	decls := make([]ids.FeatureDeclaration, 0, len(entries))
	for _, e := range entries {
		fields := make([]ids.FieldSpec, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, ids.FieldSpec{
				Name:     f.Name,
				Type:     ids.ValueType(f.Type),
				Required: f.Required,
				Default:  f.Default,
			})
		}
		decls = append(decls, ids.FeatureDeclaration{
			FeatureId: e.FeatureId,
			Type:      ids.ValueType(e.Type),
			Fields:    fields,
		})
	}

	return parse.NewDeclarations(decls...), nil
}
