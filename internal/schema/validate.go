package schema

import (
	"strings"

	"github.com/hanpama/restgraph/internal/faults"
)

// Validate walks the schema graph and asserts its structural
// invariants. It runs once, right after ParseSDL and before the schema
// is used; any violation aborts construction of the owning engine.
//
// transforms is the set of transformer names registered by the caller;
// every @transform reference must resolve into it so the shaping path
// can treat lookups as infallible. A nil set skips the transform-name
// check, which lets offline tools validate schemas without loading the
// registry.
func Validate(s *Schema, transforms map[string]struct{}) error {
	hasTransform := func(name string) bool {
		if transforms == nil {
			return true
		}
		_, ok := transforms[name]
		return ok
	}

	for _, r := range s.Resources {
		if len(r.Endpoints) == 0 {
			return faults.Schemaf("Resource %q has no endpoints", r.Name)
		}
		for method, ep := range r.Endpoints {
			if ep.Path == "" {
				return faults.Schemaf("Endpoint %s of resource %q has an empty path", method, r.Name)
			}
		}
		if r.Transform != "" && !hasTransform(r.Transform) {
			return faults.Schemaf("Unknown transform %q on resource %q", r.Transform, r.Name)
		}
		if err := validateFields(s, r.Name, r.Fields, hasTransform); err != nil {
			return err
		}
	}

	for _, vt := range s.ValueTypes {
		if vt.Transform != "" && !hasTransform(vt.Transform) {
			return faults.Schemaf("Unknown transform %q on type %q", vt.Transform, vt.Name)
		}
		if err := validateFields(s, vt.Name, vt.Fields, hasTransform); err != nil {
			return err
		}
	}
	return nil
}

func validateFields(s *Schema, typeName string, fields map[string]*Field, hasTransform func(string) bool) error {
	for name, f := range fields {
		if f.Type == "" {
			return faults.Schemaf("Field %q of %q has no type", name, typeName)
		}
		if err := validateTypeToken(f.Type, name, typeName); err != nil {
			return err
		}
		base := f.BaseType()
		if !IsScalar(base) && s.Resource(base) == nil && s.ValueType(base) == nil {
			return faults.Schemaf("Type %q not found in definitions (field %q of %q)", base, name, typeName)
		}
		if f.Transform != "" && !hasTransform(f.Transform) {
			return faults.Schemaf("Unknown transform %q on field %q of %q", f.Transform, name, typeName)
		}
	}
	return nil
}

// validateTypeToken checks list-bracket balance and non-null marker
// placement on a raw type token. A ! may only appear at the very end,
// after all closing brackets: element-level nullability such as
// "[Type!]" is rejected.
func validateTypeToken(raw, fieldName, typeName string) error {
	if strings.Count(raw, "[") != strings.Count(raw, "]") {
		return faults.Schemaf("Unbalanced list brackets in type %q of field %q on %q", raw, fieldName, typeName)
	}
	if i := strings.Index(raw, "!"); i >= 0 && i != len(raw)-1 {
		return faults.Schemaf("Non-null marker must come last in type %q of field %q on %q", raw, fieldName, typeName)
	}
	return nil
}
