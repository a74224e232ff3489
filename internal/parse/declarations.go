package parse

import "github.com/amichne/konditional/internal/ids"

// Declarations is the pre-registered set of feature shapes a decode
// reconciles incoming JSON against: every flag entry's key and wire type
// must match an entry here, and OBJECT entries are additionally checked
// against the entry's field schema.
type Declarations map[string]ids.FeatureDeclaration

// NewDeclarations builds a Declarations set from a list, keyed by FeatureId.
func NewDeclarations(decls ...ids.FeatureDeclaration) Declarations {
	d := make(Declarations, len(decls))
	for _, decl := range decls {
		d[decl.FeatureId] = decl
	}
	return d
}
