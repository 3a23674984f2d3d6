package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hanpama/restgraph/internal/batch"
	"github.com/hanpama/restgraph/internal/cache"
	"github.com/hanpama/restgraph/internal/eventbus"
	"github.com/hanpama/restgraph/internal/events"
	"github.com/hanpama/restgraph/internal/faults"
	"github.com/hanpama/restgraph/internal/language"
	"github.com/hanpama/restgraph/internal/schema"
)

// Engine owns one schema, one cache, one batcher, one runtime, and the
// caller's transformer registry. None of these are shared across Engine
// instances.
type Engine struct {
	schema       *schema.Schema
	runtime      Runtime
	cache        *cache.Cache
	batcher      *batch.Batcher
	transformers TransformerRegistry
}

// NewEngine wires an engine from its collaborators. The schema is
// assumed validated against the registry.
func NewEngine(s *schema.Schema, rt Runtime, c *cache.Cache, b *batch.Batcher, tr TransformerRegistry) *Engine {
	return &Engine{schema: s, runtime: rt, cache: c, batcher: b, transformers: tr}
}

// ExecuteOptions adjusts a single Execute call.
type ExecuteOptions struct {
	// UseCache serves queries from the cache when a live entry exists
	// and stores fresh results on miss.
	UseCache bool
}

// cachedResult is the cache entry value: the shaped tree plus the raw
// decoded response it was shaped from.
type cachedResult struct {
	Shaped any
	Raw    any
}

// Execute parses and runs one operation string, returning the result
// map keyed by top-level query (or mutation field) name.
func (e *Engine) Execute(ctx context.Context, operation string, variables map[string]any, opts ExecuteOptions) (result map[string]any, err error) {
	op, err := language.Parse(operation)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	eventbus.Publish(ctx, events.ExecuteStart{
		Operation:     operation,
		OperationName: op.OperationName,
		OperationType: op.OperationType,
	})
	defer func() {
		eventbus.Publish(ctx, events.ExecuteFinish{
			Operation:     operation,
			OperationName: op.OperationName,
			OperationType: op.OperationType,
			Err:           err,
			Duration:      time.Since(start),
		})
	}()

	if variables == nil {
		variables = map[string]any{}
	}
	for name, def := range op.Variables {
		if !def.Required {
			continue
		}
		if _, ok := variables[name]; !ok {
			return nil, faults.Validationf("required variable $%s was not provided", name)
		}
	}

	switch op.OperationType {
	case "query":
		return e.executeQueries(ctx, op, variables, opts)
	case "mutation":
		return e.executeMutations(ctx, op, variables)
	default:
		return nil, faults.Validationf("unsupported operation type %q", op.OperationType)
	}
}

// executeQueries enqueues every top-level query and awaits them
// together. A cache hit bypasses the batcher entirely, so a cached
// query executes at most once.
func (e *Engine) executeQueries(ctx context.Context, op *language.ParsedOperation, variables map[string]any, opts ExecuteOptions) (map[string]any, error) {
	results := make(map[string]any, len(op.Queries))
	raws := newRawResponses()

	type pendingQuery struct {
		name string
		ch   <-chan batch.Result
	}
	var pending []pendingQuery

	for _, q := range op.Queries {
		res := e.schema.Resource(q.Name)
		if res == nil {
			return nil, faults.Configf("resource %q not found in schema", q.Name)
		}
		args, err := resolveArgs(q.Args, variables, true)
		if err != nil {
			return nil, err
		}
		key := cacheKey(q.Name, args)

		if opts.UseCache {
			if v, ok := e.cache.Get(key); ok {
				cr := v.(cachedResult)
				results[q.Name] = cr.Shaped
				raws.set(q.Name, cr.Raw)
				eventbus.Publish(ctx, events.CacheHit{Key: key})
				continue
			}
			eventbus.Publish(ctx, events.CacheMiss{Key: key})
		}

		q := q
		ch := e.batcher.Add(ctx, q.Name, func(ctx context.Context) (any, error) {
			shaped, raw, err := e.resolveField(ctx, q.Name, q.Fields, q.Args, variables, res, raws)
			if err != nil {
				return nil, err
			}
			if opts.UseCache {
				e.cache.Set(key, cachedResult{Shaped: shaped, Raw: raw})
			}
			return shaped, nil
		})
		pending = append(pending, pendingQuery{name: q.Name, ch: ch})
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

// resolveField performs the full fetch-extract-shape cycle for one
// resource query: GET the endpoint, apply the resource's dataPath to
// the raw JSON, then shape against the requested fields. The raw
// decoded response is recorded so transforms can see the original
// payload alongside the shaped one.
func (e *Engine) resolveField(
	ctx context.Context,
	name string,
	fields map[string]*language.FieldSelection,
	args map[string]string,
	variables map[string]any,
	res *schema.Resource,
	raws *rawResponses,
) (any, any, error) {
	if _, ok := res.Endpoints[http.MethodGet]; !ok {
		return nil, nil, faults.Configf("resource %q has no GET endpoint", res.Name)
	}

	// Nested/optional argument resolution is lenient: unresolved $vars
	// are dropped, never fatal.
	resolved, _ := resolveArgs(args, variables, false)

	body, err := e.runtime.Fetch(ctx, res, http.MethodGet, resolved)
	if err != nil {
		return nil, nil, err
	}

	raw := gjson.ParseBytes(body)
	raws.set(name, raw.Value())

	data := raw
	if res.DataPath != "" {
		data = raw.Get(normalizePath(res.DataPath))
	}

	shaped, err := e.shapeObject(ctx, data, fields, res.Fields, res.Transform, res.Name, variables, raws)
	if err != nil {
		return nil, nil, err
	}
	return shaped, raw.Value(), nil
}

// cacheKey derives the deterministic memoization key for a query:
// the query name plus the JSON form of its resolved arguments (Go maps
// marshal with sorted keys).
func cacheKey(name string, args map[string]any) string {
	encoded, _ := json.Marshal(args)
	return name + ":" + string(encoded)
}

// rawResponses accumulates raw decoded payloads per query name for the
// duration of one Execute call. Batched resolvers write concurrently.
type rawResponses struct {
	mu sync.Mutex
	m  map[string]any
}

func newRawResponses() *rawResponses {
	return &rawResponses{m: make(map[string]any)}
}

func (r *rawResponses) set(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = v
}

func (r *rawResponses) snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out
}
