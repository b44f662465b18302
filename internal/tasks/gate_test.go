package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/songcart/internal/partition"
)

func TestGate(t *testing.T) {
	ctx := context.Background()
	u1 := partition.Key{Kind: partition.Cart, Name: "u1"}
	u2 := partition.Key{Kind: partition.Cart, Name: "u2"}
	h1 := partition.Key{Kind: partition.History, Name: "u1"}

	t.Run("SerializesOnePartition", func(t *testing.T) {
		g := NewGate(0, 1)

		var active, peak int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := g.Enter(ctx, u1)
				if err != nil {
					t.Errorf("failed to enter: %v", err)
					return
				}
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				release()
			}()
		}
		wg.Wait()

		if peak != 1 {
			t.Errorf("expected at most one writer at a time, saw %d", peak)
		}
	})

	t.Run("PartitionsAreIndependent", func(t *testing.T) {
		g := NewGate(0, 1)

		release, err := g.Enter(ctx, u1)
		if err != nil {
			t.Fatalf("failed to enter: %v", err)
		}
		defer release()

		short, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		other, err := g.Enter(short, u2)
		if err != nil {
			t.Fatalf("another partition should not wait: %v", err)
		}
		other()
	})

	t.Run("ContextCancelReleasesHeldSlots", func(t *testing.T) {
		g := NewGate(0, 1)

		release, err := g.Enter(ctx, h1)
		if err != nil {
			t.Fatalf("failed to enter: %v", err)
		}

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		// u1's cart sorts before its history, so the cart slot is taken before the wait on history times out.
		if _, err := g.Enter(short, u1, h1); err == nil {
			t.Fatal("expected timeout while history is held")
		}
		release()

		again, err := g.Enter(ctx, u1)
		if err != nil {
			t.Fatalf("cart slot should have been released: %v", err)
		}
		again()
	})

	t.Run("DuplicateKeys", func(t *testing.T) {
		g := NewGate(0, 1)

		release, err := g.Enter(ctx, u1, u1)
		if err != nil {
			t.Fatalf("entering the same key twice should not deadlock: %v", err)
		}
		release()
	})

	t.Run("Pacing", func(t *testing.T) {
		g := NewGate(1, 1)

		release, err := g.Enter(ctx, u1)
		if err != nil {
			t.Fatalf("failed to enter: %v", err)
		}
		release()

		short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		if _, err := g.Enter(short, u1); err == nil {
			t.Error("expected the second write within a second to be paced")
		}

		other, err := g.Enter(ctx, u2)
		if err != nil {
			t.Fatalf("pacing one partition should not affect another: %v", err)
		}
		other()
	})
	t.Run("ReleasedSlotsAreForgotten", func(t *testing.T) {
		g := NewGate(0, 1)

		for i := range 200 {
			key := partition.Key{Kind: partition.Cart, Name: fmt.Sprintf("user-%d", i)}
			release, err := g.Enter(ctx, key, partition.Key{Kind: partition.History, Name: key.Name})
			if err != nil {
				t.Fatalf("failed to enter: %v", err)
			}
			release()
		}

		if n := len(g.slots); n != 0 {
			t.Errorf("expected no slots after release, got %d", n)
		}
	})

	t.Run("HeldSlotIsKept", func(t *testing.T) {
		g := NewGate(0, 1)

		release, err := g.Enter(ctx, u1)
		if err != nil {
			t.Fatalf("failed to enter: %v", err)
		}

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if _, err := g.Enter(short, u1); err == nil {
			t.Fatal("expected timeout while u1 is held")
		}

		if n := len(g.slots); n != 1 {
			t.Errorf("a held slot must survive an abandoned waiter, got %d slots", n)
		}
		release()

		if n := len(g.slots); n != 0 {
			t.Errorf("expected no slots after release, got %d", n)
		}
	})

	t.Run("DrainingSlotIsSweptOnceRefilled", func(t *testing.T) {
		g := NewGate(1, 1)

		release, err := g.Enter(ctx, u1)
		if err != nil {
			t.Fatalf("failed to enter: %v", err)
		}
		release()

		if n := len(g.slots); n != 1 {
			t.Fatalf("a slot with a drained limiter should be kept, got %d slots", n)
		}

		g.mu.Lock()
		g.sweep(time.Now().Add(2 * time.Second))
		n := len(g.slots)
		g.mu.Unlock()

		if n != 0 {
			t.Errorf("expected refilled slot to be swept, got %d slots", n)
		}
	})
}
