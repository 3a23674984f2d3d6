// Package language lexes and parses the operation surface: GraphQL-like
// query/mutation strings without fragments, aliases, or directives.
package language

// ParsedOperation is the structured form of one operation string.
type ParsedOperation struct {
	// OperationType is "query" or "mutation".
	OperationType string
	OperationName string
	// Variables maps declared variable names (without the leading $) to
	// their definitions.
	Variables map[string]VariableDefinition
	// Queries are the top-level selections in declaration order.
	Queries []*ParsedQuery
}

// VariableDefinition records a declared operation variable.
type VariableDefinition struct {
	// Type is the raw type token as written, without any trailing !.
	Type string
	// Required is true when the declared type ended in !.
	Required bool
}

// ParsedQuery is one top-level selection: a resource (or mutation
// field) name with its arguments and requested field tree.
type ParsedQuery struct {
	Name   string
	Args   map[string]string
	Fields map[string]*FieldSelection
}

// FieldSelection is one node of a requested field tree. A selection is
// either a leaf (scalar, include as-is) or a nested selection carrying
// its own arguments and sub-fields.
type FieldSelection struct {
	Leaf   bool
	Args   map[string]string
	Fields map[string]*FieldSelection
}

// Leaf is the shared marker selection for scalar fields.
var leafSelection = FieldSelection{Leaf: true}

// NewLeaf returns a leaf selection.
func NewLeaf() *FieldSelection {
	s := leafSelection
	return &s
}
