package restgraph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testSDL = `
	type User {
		@endpoint(GET, "/users/{id}")
		@endpoint(POST, "/users")
		id: String!
		name: String @from("profile.fullName")
		age: Int
	}
`

func TestClient_QueryAgainstBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/u1", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id": "u1", "profile": {"fullName": "Ann"}, "age": 34}`))
	}))
	defer srv.Close()

	client, err := New(testSDL, map[string]string{"default": srv.URL}, Options{
		Headers: map[string]string{"Authorization": "Bearer tok"},
	}, nil)
	require.NoError(t, err)

	got, err := client.Execute(context.Background(), `query Q {
		user(id: "u1") { id name age }
	}`, nil, ExecuteOptions{})
	require.NoError(t, err)

	want := map[string]any{"user": map[string]any{
		"id":   "u1",
		"name": "Ann",
		"age":  34,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_MutationAgainstBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Equal(t, map[string]any{"name": "Ann"}, body)
		w.Write([]byte(`{"id": "u9", "profile": {"fullName": "Ann"}}`))
	}))
	defer srv.Close()

	client, err := New(testSDL, map[string]string{"default": srv.URL}, Options{}, nil)
	require.NoError(t, err)

	got, err := client.Execute(context.Background(), `mutation M {
		createUser(name: "Ann") { id name }
	}`, nil, ExecuteOptions{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"createUser": map[string]any{
		"id":   "u9",
		"name": "Ann",
	}}, got)
}

func TestNew_SchemaErrors(t *testing.T) {
	t.Run("parse failure", func(t *testing.T) {
		_, err := New(`type User {`, nil, Options{}, nil)
		require.Error(t, err)
	})

	t.Run("validation failure", func(t *testing.T) {
		_, err := New(`
			type User {
				@endpoint(GET, "/users")
				pet: Animal
			}
		`, nil, Options{}, nil)
		require.Error(t, err)
	})

	t.Run("unregistered transform", func(t *testing.T) {
		_, err := New(`
			type User {
				@endpoint(GET, "/users")
				@transform("missing")
				id: String
			}
		`, nil, Options{}, Transformers{})
		require.Error(t, err)
	})
}

func TestClient_TransformerWiring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "u1"}`))
	}))
	defer srv.Close()

	transformers := Transformers{
		"tag": func(raw any, shaped any, raws map[string]any) any {
			m := shaped.(map[string]any)
			m["tagged"] = true
			return m
		},
	}
	client, err := New(`
		type User {
			@endpoint(GET, "/users/{id}")
			@transform("tag")
			id: String!
		}
	`, map[string]string{"default": srv.URL}, Options{}, transformers)
	require.NoError(t, err)

	got, err := client.Execute(context.Background(), `query Q { user(id: "u1") { id } }`, nil, ExecuteOptions{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"user": map[string]any{
		"id":     "u1",
		"tagged": true,
	}}, got)
}
