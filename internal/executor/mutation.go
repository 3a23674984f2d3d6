package executor

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hanpama/restgraph/internal/batch"
	"github.com/hanpama/restgraph/internal/faults"
	"github.com/hanpama/restgraph/internal/language"
)

// mutationVerbs maps mutation field prefixes to HTTP methods. Matching
// is first-wins in this fixed order.
var mutationVerbs = []struct {
	Prefix string
	Method string
}{
	{"create", http.MethodPost},
	{"update", http.MethodPut},
	{"patch", http.MethodPatch},
	{"delete", http.MethodDelete},
}

// executeMutations runs every mutation field through the same batching
// mechanism as queries and awaits them together. Unlike query shaping,
// the shaped result is cherry-picked afterwards: resource-level
// transforms may over-produce, and only explicitly requested fields may
// reach the output.
func (e *Engine) executeMutations(ctx context.Context, op *language.ParsedOperation, variables map[string]any) (map[string]any, error) {
	results := make(map[string]any, len(op.Queries))
	raws := newRawResponses()

	type pendingMutation struct {
		name string
		ch   <-chan batch.Result
	}
	var pending []pendingMutation

	for _, q := range op.Queries {
		method, resourceName, err := splitMutationName(q.Name)
		if err != nil {
			return nil, err
		}
		res := e.schema.Resource(resourceName)
		if res == nil {
			return nil, faults.Configf("resource %q not found in schema", resourceName)
		}
		if _, ok := res.Endpoints[method]; !ok {
			return nil, faults.Configf("resource %q has no %s endpoint", res.Name, method)
		}

		args, err := resolveArgs(q.Args, variables, true)
		if err != nil {
			return nil, err
		}

		q := q
		ch := e.batcher.Add(ctx, q.Name, func(ctx context.Context) (any, error) {
			body, err := e.runtime.Fetch(ctx, res, method, args)
			if err != nil {
				return nil, err
			}
			raw := gjson.ParseBytes(body)
			raws.set(q.Name, raw.Value())

			data := raw
			if res.DataPath != "" {
				data = raw.Get(normalizePath(res.DataPath))
			}
			shaped, err := e.shapeObject(ctx, data, q.Fields, res.Fields, res.Transform, res.Name, variables, raws)
			if err != nil {
				return nil, err
			}
			return cherryPick(shaped, q.Fields), nil
		})
		pending = append(pending, pendingMutation{name: q.Name, ch: ch})
	}

	for _, p := range pending {
		r := <-p.ch
		if r.Err != nil {
			return nil, r.Err
		}
		results[p.name] = r.Value
	}
	return results, nil
}

// splitMutationName splits a mutation field into its operation prefix
// and resource name suffix.
func splitMutationName(name string) (method, resource string, err error) {
	lower := strings.ToLower(name)
	for _, v := range mutationVerbs {
		if strings.HasPrefix(lower, v.Prefix) && len(name) > len(v.Prefix) {
			return v.Method, name[len(v.Prefix):], nil
		}
	}
	return "", "", faults.Validationf("unsupported mutation operation %q", name)
}

// cherryPick trims a shaped mutation result to the explicitly requested
// field tree, recursively, including through arrays. Keys absent from
// the selection never leak into the output.
func cherryPick(shaped any, sel map[string]*language.FieldSelection) any {
	switch v := shaped.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cherryPick(item, sel)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(sel))
		for name, s := range sel {
			val, ok := v[name]
			if !ok {
				continue
			}
			if s.Leaf {
				out[name] = val
			} else {
				out[name] = cherryPick(val, s.Fields)
			}
		}
		return out
	default:
		return shaped
	}
}
