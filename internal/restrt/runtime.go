// Package restrt implements the executor runtime for REST backends.
// It translates one resolved field into an HTTP request against the
// configured base URL, substituting path placeholders and routing the
// remaining arguments into the query string or body, then delegates
// the actual call to a Transport.
package restrt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/hanpama/restgraph/internal/executor"
	"github.com/hanpama/restgraph/internal/faults"
	"github.com/hanpama/restgraph/internal/schema"
)

// Request is one outgoing REST call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is a JSON-encodable value; nil means no body.
	Body any
}

// Transport performs the literal network exchange. It returns the raw
// JSON response body, or a network fault carrying the HTTP status when
// the response is not in the success range.
type Transport interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Runtime implements executor.Runtime over a Transport.
type Runtime struct {
	transport Transport
	// baseURLs maps endpoint paths (exact string match) to base URLs,
	// with a mandatory "default" fallback.
	baseURLs map[string]string
	headers  map[string]string
}

var _ executor.Runtime = (*Runtime)(nil)

// NewRuntime creates a Runtime. headers are static and attached to
// every request.
func NewRuntime(transport Transport, baseURLs, headers map[string]string) *Runtime {
	return &Runtime{transport: transport, baseURLs: baseURLs, headers: headers}
}

// Fetch builds and performs the REST call for one resolved field.
// GET arguments travel as a query string, all other methods carry them
// as a JSON body. Arguments consumed by path placeholders are not
// repeated in either.
func (r *Runtime) Fetch(ctx context.Context, res *schema.Resource, method string, args map[string]any) ([]byte, error) {
	ep, ok := res.Endpoints[method]
	if !ok {
		return nil, faults.Configf("resource %q has no %s endpoint", res.Name, method)
	}

	base, err := r.baseURL(ep.Path)
	if err != nil {
		return nil, err
	}
	path, consumed := substitutePath(ep.Path, args)

	remaining := make(map[string]any, len(args))
	for name, v := range args {
		if _, used := consumed[name]; !used {
			remaining[name] = v
		}
	}

	req := Request{
		Method:  method,
		URL:     strings.TrimRight(base, "/") + path,
		Headers: r.headers,
	}
	if method == http.MethodGet {
		if len(remaining) > 0 {
			values := url.Values{}
			for name, v := range remaining {
				values.Set(name, formatValue(v))
			}
			req.URL += "?" + values.Encode()
		}
	} else if len(remaining) > 0 {
		req.Body = remaining
	}

	return r.transport.Do(ctx, req)
}

// baseURL resolves the base URL for an endpoint path: exact path match
// first, then the "default" mapping.
func (r *Runtime) baseURL(path string) (string, error) {
	if base, ok := r.baseURLs[path]; ok {
		return base, nil
	}
	if base, ok := r.baseURLs["default"]; ok {
		return base, nil
	}
	return "", faults.Configf("no base URL for path %q and no default configured", path)
}

var pathPlaceholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// substitutePath replaces {name} placeholders with URL-encoded argument
// values, returning the substituted path and the set of consumed
// argument names. Unresolved placeholders become empty, and a trailing
// slash left behind by one is trimmed.
func substitutePath(path string, args map[string]any) (string, map[string]struct{}) {
	consumed := map[string]struct{}{}
	out := pathPlaceholder.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := args[name]
		if !ok {
			return ""
		}
		consumed[name] = struct{}{}
		return url.PathEscape(formatValue(v))
	})
	out = strings.TrimRight(out, "/")
	return out, consumed
}

func formatValue(v any) string {
	return fmt.Sprintf("%v", v)
}
