// Package resttp is the real HTTP transport. It owns per-call policy:
// default deadlines, JSON encoding/decoding guards, status
// classification, and the retry/backoff loop.
package resttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/hanpama/restgraph/internal/eventbus"
	"github.com/hanpama/restgraph/internal/events"
	"github.com/hanpama/restgraph/internal/faults"
	"github.com/hanpama/restgraph/internal/restrt"
)

// Transport performs REST calls over net/http.
type Transport struct {
	opts *Options
}

var _ restrt.Transport = (*Transport)(nil)

// New creates a Transport.
func New(opts ...Option) *Transport {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	return &Transport{opts: o}
}

// Do performs one REST call, retrying transport errors and 5xx
// responses with exponential backoff up to MaxRetries additional
// attempts. Other non-success responses fail immediately with a
// network fault carrying the status.
func (t *Transport) Do(ctx context.Context, req restrt.Request) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && t.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.RequestTimeout)
		defer cancel()
	}

	var bodyBytes []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("resttp: encoding request body: %w", err)
		}
		bodyBytes = encoded
	}

	attempts := 0
	status := 0
	start := time.Now()
	eventbus.Publish(ctx, events.RESTCallStart{Method: req.Method, URL: req.URL})

	operation := func() ([]byte, error) {
		attempts++
		body, st, err := t.attempt(ctx, req, bodyBytes)
		status = st
		return body, err
	}

	bo := backoff.NewExponentialBackOff()
	if t.opts.RetryDelay > 0 {
		bo.InitialInterval = t.opts.RetryDelay
	}
	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(t.opts.MaxRetries)+1),
	)

	eventbus.Publish(ctx, events.RESTCallFinish{
		Method:   req.Method,
		URL:      req.URL,
		Status:   status,
		Attempts: attempts,
		Err:      err,
		Duration: time.Since(start),
	})
	return result, err
}

// attempt performs a single HTTP exchange.
func (t *Transport) attempt(ctx context.Context, req restrt.Request, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, 0, backoff.Permanent(fmt.Errorf("resttp: building request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.opts.Client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fault := faults.Networkf(resp.StatusCode, "%s %s returned status %d", req.Method, req.URL, resp.StatusCode)
		if resp.StatusCode >= 500 {
			return nil, resp.StatusCode, fault
		}
		return nil, resp.StatusCode, backoff.Permanent(fault)
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		// Some endpoints (typically DELETE) answer with an empty body.
		return []byte("null"), resp.StatusCode, nil
	}
	if !json.Valid(payload) {
		return nil, resp.StatusCode, backoff.Permanent(fmt.Errorf("resttp: %s %s returned a non-JSON body", req.Method, req.URL))
	}
	return payload, resp.StatusCode, nil
}
