package executor

import (
	"context"
	"sync"

	"github.com/hanpama/restgraph/internal/schema"
)

// RuntimeCall records one Fetch invocation against a MockRuntime.
type RuntimeCall struct {
	Resource string
	Method   string
	Args     map[string]any
}

// MockRuntime is a canned-response Runtime for tests. Responses are
// keyed by "METHOD ResourceName"; a missing key answers "null".
type MockRuntime struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	calls     []RuntimeCall
}

func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		responses: map[string][]byte{},
		errs:      map[string]error{},
	}
}

// Respond registers the body returned for method calls on resource.
func (m *MockRuntime) Respond(method, resource string, body string) *MockRuntime {
	m.responses[method+" "+resource] = []byte(body)
	return m
}

// Fail registers an error returned for method calls on resource.
func (m *MockRuntime) Fail(method, resource string, err error) *MockRuntime {
	m.errs[method+" "+resource] = err
	return m
}

func (m *MockRuntime) Fetch(ctx context.Context, res *schema.Resource, method string, args map[string]any) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, RuntimeCall{Resource: res.Name, Method: method, Args: args})
	m.mu.Unlock()

	key := method + " " + res.Name
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	if body, ok := m.responses[key]; ok {
		return body, nil
	}
	return []byte("null"), nil
}

// Calls returns a snapshot of recorded invocations.
func (m *MockRuntime) Calls() []RuntimeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RuntimeCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of recorded invocations.
func (m *MockRuntime) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
