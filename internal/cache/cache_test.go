package cache

import (
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestCache_SetGet(t *testing.T) {
	clk := newFakeClock()
	c := New(time.Minute, WithClock(clk.now))

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get(missing) reported a hit")
	}
}

func TestCache_Expiry(t *testing.T) {
	clk := newFakeClock()
	c := New(time.Minute, WithClock(clk.now))
	c.Set("a", "x")

	// Exactly at the deadline the entry is still live.
	clk.advance(time.Minute)
	if !c.Has("a") {
		t.Fatal("entry expired at its exact deadline")
	}

	clk.advance(time.Nanosecond)
	if c.Has("a") {
		t.Fatal("entry alive past its deadline")
	}
	// The expired access deleted it, so a later Set starts fresh.
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry still readable")
	}
}

func TestCache_SetResetsExpiry(t *testing.T) {
	clk := newFakeClock()
	c := New(time.Minute, WithClock(clk.now))
	c.Set("a", 1)

	clk.advance(59 * time.Second)
	c.Set("a", 2)

	clk.advance(59 * time.Second)
	got, ok := c.Get("a")
	if !ok || got != 2 {
		t.Fatalf("Get(a) = %v, %v after reset", got, ok)
	}
}

func TestCache_LenAndKeysPurge(t *testing.T) {
	clk := newFakeClock()
	c := New(time.Minute, WithClock(clk.now))
	c.Set("a", 1)
	c.Set("b", 2)

	clk.advance(30 * time.Second)
	c.Set("c", 3)

	// a and b expire, c survives.
	clk.advance(45 * time.Second)
	if got := c.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	keys := c.Keys()
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"c"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_InvalidateAndClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if c.Has("a") {
		t.Fatal("invalidated entry still present")
	}
	if !c.Has("b") {
		t.Fatal("unrelated entry removed")
	}

	c.Clear()
	if got := c.Len(); got != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", got)
	}
}
