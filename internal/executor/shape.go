package executor

import (
	"context"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hanpama/restgraph/internal/eventbus"
	"github.com/hanpama/restgraph/internal/events"
	"github.com/hanpama/restgraph/internal/language"
	"github.com/hanpama/restgraph/internal/schema"
)

// shapeObject reshapes raw data into the requested field tree.
//
// Arrays map the same shaping over each element, preserving order.
// Shaping is pure CPU work; only nested resource fields perform I/O.
func (e *Engine) shapeObject(
	ctx context.Context,
	data gjson.Result,
	sel map[string]*language.FieldSelection,
	fields map[string]*schema.Field,
	transform string,
	typeName string,
	variables map[string]any,
	raws *rawResponses,
) (any, error) {
	if data.IsArray() {
		items := data.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			shaped, err := e.shapeObject(ctx, item, sel, fields, transform, typeName, variables, raws)
			if err != nil {
				return nil, err
			}
			out = append(out, shaped)
		}
		return out, nil
	}

	shaped := make(map[string]any, len(sel))
	for name, fieldSel := range sel {
		fs := fields[name]
		if fs == nil {
			// Queries may request fields the schema does not declare;
			// those are dropped, not fatal.
			eventbus.Publish(ctx, events.FieldSkipped{Type: typeName, Field: name})
			continue
		}

		from := fs.From
		if from == "" {
			from = name
		}
		rawVal := data.Get(normalizePath(from))
		base := fs.BaseType()

		var val any
		switch {
		case fs.IsResource:
			// A resource-typed field means a secondary fetch, not
			// extraction from the current payload. Without a
			// sub-selection there is nothing to fetch for.
			if fieldSel.Leaf {
				continue
			}
			nested, err := e.resolveNested(ctx, base, fieldSel, variables, raws)
			if err != nil {
				// One broken sub-resource must not void an already
				// successful parent fetch.
				val = nil
			} else {
				val = nested
			}

		case e.schema.ValueType(base) != nil:
			vt := e.schema.ValueType(base)
			if fieldSel.Leaf || !rawVal.Exists() || rawVal.Type == gjson.Null {
				// No sub-selection: custom types pass through uncoerced.
				val = rawVal.Value()
			} else {
				nested, err := e.shapeObject(ctx, rawVal, fieldSel.Fields, vt.Fields, vt.Transform, vt.Name, variables, raws)
				if err != nil {
					return nil, err
				}
				val = nested
			}

		default:
			v, err := e.coerceFieldValue(rawVal, base, fs.ListDepth(), fs.Nullable)
			if err != nil {
				if fs.Nullable {
					val = nil
				} else {
					return nil, err
				}
			} else {
				val = v
			}
		}

		if fs.Transform != "" {
			val = e.applyFieldTransform(fs.Transform, name, data, val, raws)
		}
		shaped[name] = val
	}

	// A type-level transform fully replaces the shaped tree.
	if transform != "" {
		return e.transformers[transform](data.Value(), shaped, raws.snapshot()), nil
	}
	return shaped, nil
}

// resolveNested performs a full resource resolution for a nested
// resource field: the same GET/dataPath/shape cycle as a top-level
// query, keyed into rawResponses under the resource name.
func (e *Engine) resolveNested(ctx context.Context, resourceName string, sel *language.FieldSelection, variables map[string]any, raws *rawResponses) (any, error) {
	res := e.schema.Resource(resourceName)
	shaped, _, err := e.resolveField(ctx, strings.ToLower(resourceName), sel.Fields, sel.Args, variables, res, raws)
	return shaped, err
}

// applyFieldTransform runs a field-level transform and extracts the
// field's key from its result.
func (e *Engine) applyFieldTransform(name, fieldName string, data gjson.Result, val any, raws *rawResponses) any {
	out := e.transformers[name](data.Value(), map[string]any{fieldName: val}, raws.snapshot())
	if m, ok := out.(map[string]any); ok {
		return m[fieldName]
	}
	return nil
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// normalizePath rewrites bracketed array accessors to gjson's dotted
// form: "data.data[0]" becomes "data.data.0".
func normalizePath(path string) string {
	if !strings.Contains(path, "[") {
		return path
	}
	return bracketIndex.ReplaceAllString(path, ".$1")
}
