package supervisor

import (
	"context"
	"testing"
	"time"
)

func TestNewWakeSeedsOnePendingWake(t *testing.T) {
	w := newWake()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := w.wait(ctx); err != nil {
		t.Fatalf("expected the initial wake to be pending, got: %v", err)
	}
}

func TestWakePostCoalesces(t *testing.T) {
	w := newWake()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := w.wait(ctx); err != nil {
		t.Fatalf("drain initial wake: %v", err)
	}

	for i := 0; i < 5; i++ {
		w.post()
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	if err := w.wait(ctx2); err != nil {
		t.Fatalf("expected a pending wake after posting, got: %v", err)
	}

	ctx3, cancel3 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel3()
	if err := w.wait(ctx3); err == nil {
		t.Fatal("multiple posts before a single wait should coalesce into one pending wake")
	}
}

func TestWakeWaitRespectsContext(t *testing.T) {
	w := newWake()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.wait(ctx); err != nil {
		t.Fatalf("drain initial wake: %v", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel2()
	if err := w.wait(ctx2); err == nil {
		t.Fatal("expected wait to return an error once its context is cancelled")
	}
}
