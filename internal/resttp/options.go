package resttp

import (
	"net/http"
	"time"
)

// Options configures the HTTP transport behavior.
//
// Defaults:
// - Client:         a dedicated http.Client with no timeout of its own
// - RequestTimeout: 10s (used only if the incoming context has no deadline)
// - MaxRetries:     0 (a single attempt)
// - RetryDelay:     100ms (initial backoff interval)
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	Client *http.Client

	RequestTimeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	// Retries apply to transport errors and 5xx responses; other
	// non-success responses fail immediately.
	MaxRetries int
	// RetryDelay seeds the exponential backoff between attempts.
	RetryDelay time.Duration
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Client:         &http.Client{},
		RequestTimeout: 10 * time.Second,
		RetryDelay:     100 * time.Millisecond,
	}
}

func WithClient(c *http.Client) Option           { return func(o *Options) { o.Client = c } }
func WithRequestTimeout(d time.Duration) Option  { return func(o *Options) { o.RequestTimeout = d } }
func WithMaxRetries(n int) Option                { return func(o *Options) { o.MaxRetries = n } }
func WithRetryDelay(d time.Duration) Option      { return func(o *Options) { o.RetryDelay = d } }
