package executor

import (
	"context"

	"github.com/hanpama/restgraph/internal/schema"
)

// Runtime is the host integration surface that turns one resolved
// field into a REST call.
//
// Contract:
//   - The engine guarantees res declares an endpoint for method before
//     calling Fetch; implementations still fail with a configuration
//     fault if it does not, since they own endpoint-to-URL resolution.
//   - args are fully resolved values: variable references have already
//     been substituted or dropped.
//   - The returned bytes are the raw JSON response body, untouched.
//     Non-success upstream responses surface as network faults carrying
//     the HTTP status.
//   - Implementations must be safe for concurrent use; the batching
//     layer runs queued fetches in parallel.
type Runtime interface {
	Fetch(ctx context.Context, res *schema.Resource, method string, args map[string]any) ([]byte, error)
}

// Transformer is a user-supplied transform function. raw is the
// payload the owning resource was shaped from, shaped is the value
// under transformation, and rawResponses maps already-resolved query
// names to their raw decoded responses.
//
// Transforms must be synchronous and side-effect free.
type Transformer func(raw any, shaped any, rawResponses map[string]any) any

// TransformerRegistry maps transform names, as referenced by
// @transform directives, to their implementations. It is validated
// against the schema at engine construction, so lookups during shaping
// are infallible.
type TransformerRegistry map[string]Transformer

// Names returns the set of registered transform names for schema
// validation.
func (r TransformerRegistry) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(r))
	for name := range r {
		names[name] = struct{}{}
	}
	return names
}
