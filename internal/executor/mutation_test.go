package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/restgraph/internal/faults"
)

const mutableSDL = `
	type User {
		@endpoint(GET, "/users/{id}")
		@endpoint(POST, "/users")
		@endpoint(PUT, "/users/{id}")
		@endpoint(PATCH, "/users/{id}")
		@endpoint(DELETE, "/users/{id}")
		id: String!
		name: String
		age: Int
	}
`

// Pattern: Calls + Result comparison
func TestExecute_MutationVerbs(t *testing.T) {
	cases := []struct {
		field  string
		method string
	}{
		{"createUser", "POST"},
		{"updateUser", "PUT"},
		{"patchUser", "PATCH"},
		{"deleteUser", "DELETE"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			rt := NewMockRuntime().Respond(tc.method, "User", `{"id": "u1", "name": "Ann"}`)
			e := newTestEngine(t, mutableSDL, rt, nil)

			got, err := e.Execute(context.Background(), `mutation M {
				`+tc.field+`(id: "u1", name: "Ann") { id }
			}`, nil, ExecuteOptions{})
			require.NoError(t, err)
			require.Equal(t, map[string]any{tc.field: map[string]any{"id": "u1"}}, got)

			calls := rt.Calls()
			require.Len(t, calls, 1)
			require.Equal(t, tc.method, calls[0].Method)
			require.Equal(t, map[string]any{"id": "u1", "name": "Ann"}, calls[0].Args)
		})
	}
}

func TestSplitMutationName(t *testing.T) {
	t.Run("prefix match is case-insensitive", func(t *testing.T) {
		method, resource, err := splitMutationName("CreateUser")
		require.NoError(t, err)
		require.Equal(t, "POST", method)
		require.Equal(t, "User", resource)
	})

	t.Run("prefix alone is not a mutation", func(t *testing.T) {
		_, _, err := splitMutationName("create")
		require.Error(t, err)
	})

	t.Run("unknown prefix rejected", func(t *testing.T) {
		_, _, err := splitMutationName("upsertUser")
		require.Error(t, err)
		require.True(t, faults.IsKind(err, faults.KindValidation))
	})
}

func TestExecute_MutationErrors(t *testing.T) {
	t.Run("unsupported operation", func(t *testing.T) {
		e := newTestEngine(t, mutableSDL, NewMockRuntime(), nil)
		_, err := e.Execute(context.Background(), `mutation M { renameUser(id: "1") { id } }`, nil, ExecuteOptions{})
		require.Error(t, err)
		require.True(t, faults.IsKind(err, faults.KindValidation))
	})

	t.Run("unknown resource", func(t *testing.T) {
		e := newTestEngine(t, mutableSDL, NewMockRuntime(), nil)
		_, err := e.Execute(context.Background(), `mutation M { createGhost(x: "1") { id } }`, nil, ExecuteOptions{})
		require.Error(t, err)
		require.True(t, faults.IsKind(err, faults.KindConfiguration))
	})

	t.Run("missing endpoint for verb", func(t *testing.T) {
		e := newTestEngine(t, `
			type User {
				@endpoint(GET, "/users/{id}")
				id: String!
			}
		`, NewMockRuntime(), nil)
		_, err := e.Execute(context.Background(), `mutation M { deleteUser(id: "1") { id } }`, nil, ExecuteOptions{})
		require.Error(t, err)
		require.True(t, faults.IsKind(err, faults.KindConfiguration))
	})

	t.Run("backend failure surfaces", func(t *testing.T) {
		rt := NewMockRuntime().Fail("POST", "User", faults.Networkf(500, "boom"))
		e := newTestEngine(t, mutableSDL, rt, nil)
		_, err := e.Execute(context.Background(), `mutation M { createUser(name: "x") { id } }`, nil, ExecuteOptions{})
		require.Error(t, err)
		require.True(t, faults.IsKind(err, faults.KindNetwork))
	})
}

func TestExecute_MutationCherryPick(t *testing.T) {
	t.Run("transform over-production is trimmed", func(t *testing.T) {
		rt := NewMockRuntime().Respond("POST", "User", `{"id": "u1", "name": "Ann", "age": 3}`)
		transformers := TransformerRegistry{
			"expand": func(raw any, shaped any, raws map[string]any) any {
				m := shaped.(map[string]any)
				m["injected"] = "extra"
				return m
			},
		}
		e := newTestEngine(t, `
			type User {
				@endpoint(POST, "/users")
				@transform("expand")
				id: String!
				name: String
				age: Int
			}
		`, rt, transformers)

		got, err := e.Execute(context.Background(), `mutation M {
			createUser(name: "Ann") { id name }
		}`, nil, ExecuteOptions{})
		require.NoError(t, err)

		want := map[string]any{"createUser": map[string]any{"id": "u1", "name": "Ann"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cherry-pick recurses through arrays", func(t *testing.T) {
		rt := NewMockRuntime().Respond("POST", "Tag", `[{"id": "t1", "label": "a"}, {"id": "t2", "label": "b"}]`)
		e := newTestEngine(t, `
			type Tag {
				@endpoint(POST, "/tags")
				id: String!
				label: String
			}
		`, rt, nil)

		got, err := e.Execute(context.Background(), `mutation M {
			createTag(label: "a") { label }
		}`, nil, ExecuteOptions{})
		require.NoError(t, err)

		want := map[string]any{"createTag": []any{
			map[string]any{"label": "a"},
			map[string]any{"label": "b"},
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestExecute_MutationVariables(t *testing.T) {
	rt := NewMockRuntime().Respond("POST", "User", `{"id": "u1"}`)
	e := newTestEngine(t, mutableSDL, rt, nil)

	_, err := e.Execute(context.Background(), `mutation M($name: String!) {
		createUser(name: $name) { id }
	}`, map[string]any{"name": "Ann"}, ExecuteOptions{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "Ann"}, rt.Calls()[0].Args)

	_, err = e.Execute(context.Background(), `mutation M {
		createUser(name: $missing) { id }
	}`, nil, ExecuteOptions{})
	require.Error(t, err)
	require.True(t, faults.IsKind(err, faults.KindValidation))
}
