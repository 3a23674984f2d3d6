package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Pattern: Result comparison
func TestRender(t *testing.T) {
	s := mustParse(t, `
		type Zoo {
			@endpoint(GET, "/zoos/{id}", "data")
			@transform("reshape")
			name: String!
			animals: [Animal]
		}
		type Animal {
			species: String @from("meta.species")
			legCount: Int
		}
	`)

	got := Render(s)
	want := `type Zoo {
  animals: [Animal]
  name: String!
  @endpoint(GET, "/zoos/{id}", "data")
  @transform("reshape")
}

type Animal {
  legCount: Int
  species: String @from("meta.species")
}

`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rendered SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	sdl := `
		type User {
			@endpoint(GET, "/users/{id}")
			@endpoint(POST, "/users")
			id: String!
			name: String
		}
	`
	first := Render(mustParse(t, sdl))
	second := Render(mustParse(t, first))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("render not stable (-first +second):\n%s", diff)
	}
}

func TestRender_Nil(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Fatalf("Render(nil) = %q, want empty", got)
	}
}
