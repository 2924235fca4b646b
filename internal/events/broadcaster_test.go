package events

import (
	"sync"
	"testing"
	"time"
)

func TestBroadcaster_RegistrationOrder(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		b.Subscribe(func(SyncEvent) {
			order = append(order, i)
		})
	}

	b.Publish(SyncEvent{Type: TypeUsage, Timestamp: time.Now()})

	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Errorf("order[%d] = %d, want %d", i, got, i+1)
		}
	}
}

func TestBroadcaster_PanicIsolation(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	var received bool
	b.Subscribe(func(SyncEvent) {
		panic("subscriber bug")
	})
	b.Subscribe(func(SyncEvent) {
		received = true
	})

	b.Publish(SyncEvent{Type: TypeAssign})

	if !received {
		t.Error("subscriber after panicking one did not receive event")
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	var calls int
	id := b.Subscribe(func(SyncEvent) { calls++ })

	b.Publish(SyncEvent{Type: TypeUsage})
	b.Unsubscribe(id)
	b.Publish(SyncEvent{Type: TypeUsage})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// Unknown tokens are ignored.
	b.Unsubscribe("no-such-token")
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster(nil)

	var calls int
	b.Subscribe(func(SyncEvent) { calls++ })

	b.Close()
	b.Publish(SyncEvent{Type: TypeUsage})

	if calls != 0 {
		t.Errorf("calls after Close = %d, want 0", calls)
	}

	if id := b.Subscribe(func(SyncEvent) {}); id != "" {
		t.Errorf("Subscribe after Close = %q, want empty token", id)
	}

	// Close is idempotent.
	b.Close()
}

func TestBroadcaster_ConcurrentPublish(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	var (
		mu    sync.Mutex
		count int
	)
	b.Subscribe(func(SyncEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Publish(SyncEvent{Type: TypeUsage})
			}
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("count = %d, want 1000", count)
	}
}

func TestBroadcaster_HandlerCanUnsubscribeItself(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	var id string
	var calls int
	id = b.Subscribe(func(SyncEvent) {
		calls++
		b.Unsubscribe(id)
	})

	b.Publish(SyncEvent{Type: TypeUsage})
	b.Publish(SyncEvent{Type: TypeUsage})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
