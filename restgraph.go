// Package restgraph executes GraphQL-style operations against REST
// backends described by a small schema language. A schema maps types to
// HTTP endpoints; operations select fields, and the engine fetches,
// shapes, batches, and caches the responses.
package restgraph

import (
	"context"
	"net/http"
	"time"

	"github.com/hanpama/restgraph/internal/batch"
	"github.com/hanpama/restgraph/internal/cache"
	"github.com/hanpama/restgraph/internal/executor"
	"github.com/hanpama/restgraph/internal/restrt"
	"github.com/hanpama/restgraph/internal/resttp"
	"github.com/hanpama/restgraph/internal/schema"
)

// Transformer rewrites a shaped value. It receives the raw decoded
// response, the shaped result, and a snapshot of all raw responses
// fetched so far in the operation.
type Transformer = executor.Transformer

// Transformers maps transform names referenced in the schema to their
// implementations.
type Transformers = executor.TransformerRegistry

// ExecuteOptions adjusts a single Execute call.
type ExecuteOptions = executor.ExecuteOptions

// Options configures a Client.
type Options struct {
	// Headers are sent with every backend request.
	Headers map[string]string

	// HTTPClient overrides the transport's underlying client.
	HTTPClient *http.Client

	// RequestTimeout bounds each backend call. Default 10s.
	RequestTimeout time.Duration

	// MaxRetries retries failed backend calls (5xx and transport errors).
	// Default 0.
	MaxRetries int

	// RetryDelay is the initial backoff interval between retries.
	// Default 100ms.
	RetryDelay time.Duration

	// CacheTimeout is the TTL for cached query results. Default 5m.
	CacheTimeout time.Duration

	// BatchInterval is how long queued operations wait before a timer
	// flush. Default 50ms.
	BatchInterval time.Duration

	// MaxBatchSize flushes a queue immediately once it holds this many
	// operations. Default 10.
	MaxBatchSize int
}

// Client is the top-level entry point. It owns a parsed schema and the
// engine built around it.
type Client struct {
	schema *schema.Schema
	engine *executor.Engine
}

// New parses and validates the schema, then wires a client around it.
// baseURLs maps endpoint paths to backend base URLs; the "default" key
// serves any path without an exact entry.
func New(sdl string, baseURLs map[string]string, opts Options, transformers Transformers) (*Client, error) {
	s, err := schema.ParseSDL(sdl)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s, transformers.Names()); err != nil {
		return nil, err
	}

	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	if opts.CacheTimeout == 0 {
		opts.CacheTimeout = 5 * time.Minute
	}
	if opts.BatchInterval == 0 {
		opts.BatchInterval = batch.DefaultInterval
	}
	if opts.MaxBatchSize == 0 {
		opts.MaxBatchSize = batch.DefaultMaxSize
	}

	topts := []resttp.Option{
		resttp.WithRequestTimeout(opts.RequestTimeout),
		resttp.WithMaxRetries(opts.MaxRetries),
		resttp.WithRetryDelay(opts.RetryDelay),
	}
	if opts.HTTPClient != nil {
		topts = append(topts, resttp.WithClient(opts.HTTPClient))
	}
	transport := resttp.New(topts...)
	runtime := restrt.NewRuntime(transport, baseURLs, opts.Headers)

	engine := executor.NewEngine(
		s,
		runtime,
		cache.New(opts.CacheTimeout),
		batch.New(opts.MaxBatchSize, opts.BatchInterval),
		transformers,
	)
	return &Client{schema: s, engine: engine}, nil
}

// Execute runs one operation string against the backends.
func (c *Client) Execute(ctx context.Context, operation string, variables map[string]any, opts ExecuteOptions) (map[string]any, error) {
	return c.engine.Execute(ctx, operation, variables, opts)
}

// Engine exposes the underlying engine, mainly for mounting the HTTP
// server handler.
func (c *Client) Engine() *executor.Engine { return c.engine }

// Schema returns the parsed schema.
func (c *Client) Schema() *schema.Schema { return c.schema }
