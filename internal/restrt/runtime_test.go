package restrt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/restgraph/internal/faults"
	"github.com/hanpama/restgraph/internal/schema"
)

// mockTransport records every request and answers with a canned body.
type mockTransport struct {
	calls []Request
	body  []byte
	err   error
}

func (m *mockTransport) Do(ctx context.Context, req Request) ([]byte, error) {
	m.calls = append(m.calls, req)
	return m.body, m.err
}

func userResource() *schema.Resource {
	return &schema.Resource{
		Name: "User",
		Endpoints: map[string]schema.Endpoint{
			"GET":  {Method: "GET", Path: "/users/{id}"},
			"POST": {Method: "POST", Path: "/users"},
		},
	}
}

// Pattern: Calls comparison
func TestFetch_RequestBuilding(t *testing.T) {
	t.Run("Path placeholder substitution", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://api.example.com"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": "42"})
		require.NoError(t, err)
		require.Len(t, mt.calls, 1)
		require.Equal(t, "https://api.example.com/users/42", mt.calls[0].URL)
		require.Equal(t, "GET", mt.calls[0].Method)
		require.Nil(t, mt.calls[0].Body)
	})

	t.Run("Remaining GET args become query string", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://api.example.com"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": 42, "limit": 5, "q": "a b"})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/users/42?limit=5&q=a+b", mt.calls[0].URL)
	})

	t.Run("Non-GET args become JSON body", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://api.example.com"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "POST", map[string]any{"name": "Ann"})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/users", mt.calls[0].URL)
		if diff := cmp.Diff(map[string]any{"name": "Ann"}, mt.calls[0].Body); diff != "" {
			t.Fatalf("body mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Unresolved placeholder trims trailing slash", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://api.example.com"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", nil)
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/users", mt.calls[0].URL)
	})

	t.Run("Placeholder values are path-escaped", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://api.example.com"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": "a/b c"})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/users/a%2Fb%20c", mt.calls[0].URL)
	})

	t.Run("Static headers attached", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://x"}, map[string]string{"Authorization": "Bearer t"})

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": "1"})
		require.NoError(t, err)
		require.Equal(t, "Bearer t", mt.calls[0].Headers["Authorization"])
	})
}

func TestFetch_BaseURLSelection(t *testing.T) {
	t.Run("Exact path mapping wins over default", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{
			"/users/{id}": "https://users.internal",
			"default":     "https://api.example.com",
		}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": "1"})
		require.NoError(t, err)
		require.Equal(t, "https://users.internal/users/1", mt.calls[0].URL)
	})

	t.Run("No mapping and no default fails", func(t *testing.T) {
		mt := &mockTransport{}
		rt := NewRuntime(mt, map[string]string{"/other": "https://x"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": "1"})
		require.Error(t, err)
		require.True(t, faults.IsKind(err, faults.KindConfiguration))
		require.Empty(t, mt.calls)
	})

	t.Run("Trailing base slash is normalized", func(t *testing.T) {
		mt := &mockTransport{body: []byte(`{}`)}
		rt := NewRuntime(mt, map[string]string{"default": "https://api.example.com/"}, nil)

		_, err := rt.Fetch(context.Background(), userResource(), "GET", map[string]any{"id": "1"})
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/users/1", mt.calls[0].URL)
	})
}

func TestFetch_MissingEndpoint(t *testing.T) {
	mt := &mockTransport{}
	rt := NewRuntime(mt, map[string]string{"default": "https://x"}, nil)

	_, err := rt.Fetch(context.Background(), userResource(), "DELETE", nil)
	require.Error(t, err)
	require.True(t, faults.IsKind(err, faults.KindConfiguration))
}
