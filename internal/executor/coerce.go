package executor

import (
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/hanpama/restgraph/internal/faults"
	"github.com/hanpama/restgraph/internal/schema"
)

// coerceFieldValue coerces one extracted value against a field's base
// type, recursing through declared list nesting levels.
func (e *Engine) coerceFieldValue(raw gjson.Result, base string, listDepth int, nullable bool) (any, error) {
	if listDepth > 0 && raw.IsArray() {
		items := raw.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := e.coerceFieldValue(item, base, listDepth-1, nullable)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return coerceScalar(raw, base, nullable)
}

// coerceScalar coerces a raw value against a declared scalar type.
// Missing and null values yield nil on nullable fields and a validation
// fault otherwise. Coercion is scalar-only: non-scalar type names pass
// the raw value through untouched.
func coerceScalar(raw gjson.Result, typeName string, nullable bool) (any, error) {
	if !raw.Exists() || raw.Type == gjson.Null {
		if nullable {
			return nil, nil
		}
		return nil, faults.Validationf("cannot return null for non-nullable %s field", typeName)
	}

	switch typeName {
	case schema.ScalarString:
		// Anything stringifies: numeric literals coerce to their
		// decimal form ("1"), booleans to "true"/"false".
		return raw.String(), nil

	case schema.ScalarInt:
		switch raw.Type {
		case gjson.Number:
			f := raw.Float()
			if f != math.Trunc(f) {
				return nil, faults.Validationf("cannot coerce %v to Int: not an integer", raw.Value())
			}
			return int(f), nil
		case gjson.String:
			n, err := strconv.Atoi(raw.Str)
			if err != nil {
				return nil, faults.Validationf("cannot coerce %q to Int", raw.Str)
			}
			return n, nil
		default:
			return nil, faults.Validationf("cannot coerce %v to Int", raw.Value())
		}

	case schema.ScalarBoolean:
		if raw.Type == gjson.True || raw.Type == gjson.False {
			return raw.Bool(), nil
		}
		return nil, faults.Validationf("cannot coerce %v to Boolean", raw.Value())

	default:
		return raw.Value(), nil
	}
}
