// Package schema holds the schema graph parsed from SDL: REST-backed
// resources, endpoint-less value types, and their field declarations.
package schema

import "strings"

// Built-in scalar type names.
const (
	ScalarString  = "String"
	ScalarInt     = "Int"
	ScalarBoolean = "Boolean"
)

// IsScalar reports whether name is a built-in scalar type.
func IsScalar(name string) bool {
	return name == ScalarString || name == ScalarInt || name == ScalarBoolean
}

// Schema is the complete parsed schema graph.
//
// Resources are keyed by lower-cased type name because query field names
// resolve against them case-insensitively. ValueTypes keep the
// original-case name because nested type references resolve exactly as
// written. A type name never appears in both maps: declaring at least
// one @endpoint makes it a resource.
type Schema struct {
	Resources  map[string]*Resource
	ValueTypes map[string]*ValueType
}

// Resource returns the resource for a query field name, matching
// case-insensitively.
func (s *Schema) Resource(name string) *Resource {
	return s.Resources[strings.ToLower(name)]
}

// ValueType returns the value type with the exact given name.
func (s *Schema) ValueType(name string) *ValueType {
	return s.ValueTypes[name]
}

// Resource is a schema type backed by at least one REST endpoint.
type Resource struct {
	// Name is the type name as written in SDL.
	Name      string
	Fields    map[string]*Field
	Endpoints map[string]Endpoint
	// DataPath locates the payload inside the raw response before any
	// per-field extraction, e.g. "data.data[0]". Empty means the whole
	// response body.
	DataPath  string
	Transform string
}

// ValueType is an endpoint-less schema type used only as a nested shape.
type ValueType struct {
	Name      string
	Fields    map[string]*Field
	Transform string
}

// Endpoint is one HTTP binding of a resource.
type Endpoint struct {
	Method string
	Path   string
}

// Field is a single field declaration on a resource or value type.
type Field struct {
	// Type is the raw SDL type token, e.g. "String!", "[Hobby]".
	Type string
	// From is the dotted path into the raw data; empty means the field's
	// own name.
	From      string
	Transform string
	Nullable  bool
	// IsResource is set when the base type names a top-level resource,
	// which turns extraction into a secondary fetch.
	IsResource bool
}

// BaseType strips list brackets and non-null markers from the raw type
// token, leaving the bare type name.
func (f *Field) BaseType() string {
	return strings.Trim(f.Type, "[]!")
}

// ListDepth counts the array nesting levels declared on the field.
func (f *Field) ListDepth() int {
	return strings.Count(f.Type, "[")
}
