package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Render produces normalized SDL from a schema graph.
// Deterministic ordering: resources first, then value types, each
// sorted lexicographically by name, fields sorted within a type.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	resourceKeys := sortedKeys(s.Resources)
	for _, key := range resourceKeys {
		renderResource(&b, s.Resources[key])
	}
	valueKeys := sortedKeys(s.ValueTypes)
	for _, key := range valueKeys {
		renderValueType(&b, s.ValueTypes[key])
	}
	return b.String()
}

func renderResource(b *strings.Builder, r *Resource) {
	fmt.Fprintf(b, "type %s {\n", r.Name)
	renderFields(b, r.Fields)
	methods := make([]string, 0, len(r.Endpoints))
	for m := range r.Endpoints {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		ep := r.Endpoints[m]
		if r.DataPath != "" {
			fmt.Fprintf(b, "  @endpoint(%s, %q, %q)\n", ep.Method, ep.Path, r.DataPath)
		} else {
			fmt.Fprintf(b, "  @endpoint(%s, %q)\n", ep.Method, ep.Path)
		}
	}
	if r.Transform != "" {
		fmt.Fprintf(b, "  @transform(%q)\n", r.Transform)
	}
	b.WriteString("}\n\n")
}

func renderValueType(b *strings.Builder, vt *ValueType) {
	fmt.Fprintf(b, "type %s {\n", vt.Name)
	renderFields(b, vt.Fields)
	if vt.Transform != "" {
		fmt.Fprintf(b, "  @transform(%q)\n", vt.Transform)
	}
	b.WriteString("}\n\n")
}

func renderFields(b *strings.Builder, fields map[string]*Field) {
	names := sortedKeys(fields)
	for _, name := range names {
		f := fields[name]
		fmt.Fprintf(b, "  %s: %s", name, f.Type)
		if f.From != "" {
			fmt.Fprintf(b, " @from(%q)", f.From)
		}
		if f.Transform != "" {
			fmt.Fprintf(b, " @transform(%q)", f.Transform)
		}
		b.WriteString("\n")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
