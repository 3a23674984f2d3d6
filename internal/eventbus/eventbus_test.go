package eventbus

import (
	"context"
	"testing"
)

type testEvent struct {
	N int
}

type otherEvent struct{}

func TestPublishSubscribe(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	unsub := Subscribe(func(ctx context.Context, e testEvent) {
		got = append(got, e.N)
	})

	Publish(context.Background(), testEvent{N: 1})
	Publish(context.Background(), testEvent{N: 2})
	// Unrelated event types never reach the handler.
	Publish(context.Background(), otherEvent{})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("received = %v, want [1 2]", got)
	}

	unsub()
	Publish(context.Background(), testEvent{N: 3})
	if len(got) != 2 {
		t.Fatalf("handler called after unsubscribe: %v", got)
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	// Must not panic.
	Publish(context.Background(), testEvent{N: 1})
	unsub := Subscribe(func(ctx context.Context, e testEvent) {})
	unsub()
}

func TestMultipleSubscribers(t *testing.T) {
	Use(New())
	defer Use(nil)

	a, b := 0, 0
	unsubA := Subscribe(func(ctx context.Context, e testEvent) { a++ })
	defer unsubA()
	unsubB := Subscribe(func(ctx context.Context, e testEvent) { b++ })

	Publish(context.Background(), testEvent{})
	unsubB()
	Publish(context.Background(), testEvent{})

	if a != 2 || b != 1 {
		t.Fatalf("a = %d, b = %d, want 2, 1", a, b)
	}
}
