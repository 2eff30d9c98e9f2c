package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/thall/resona/internal/domain"
)

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	var callCount int

	subID := bus.Subscribe(domain.EventSongStarted, func(event domain.Event) {
		received = event
		callCount++
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	song := domain.Song{ID: "test123", Title: "Test Song"}
	bus.Publish(domain.NewSongStartedEvent(song))

	if callCount != 1 {
		t.Errorf("Expected handler to be called once, got %d", callCount)
	}
	if received == nil {
		t.Fatal("Handler did not receive event")
	}
	if received.Type() != domain.EventSongStarted {
		t.Errorf("Expected EventSongStarted, got %s", received.Type())
	}

	receivedEvent := received.(domain.SongStartedEvent)
	if receivedEvent.Song.ID != "test123" {
		t.Errorf("Expected song ID test123, got %s", receivedEvent.Song.ID)
	}
}

// TestMultipleSubscribers tests multiple handlers for the same event type.
func TestMultipleSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount1, callCount2, callCount3 int32

	bus.Subscribe(domain.EventSongStarted, func(domain.Event) { atomic.AddInt32(&callCount1, 1) })
	bus.Subscribe(domain.EventSongStarted, func(domain.Event) { atomic.AddInt32(&callCount2, 1) })
	bus.Subscribe(domain.EventSongStarted, func(domain.Event) { atomic.AddInt32(&callCount3, 1) })

	bus.Publish(domain.NewSongStartedEvent(domain.Song{ID: "test"}))

	if atomic.LoadInt32(&callCount1) != 1 || atomic.LoadInt32(&callCount2) != 1 || atomic.LoadInt32(&callCount3) != 1 {
		t.Error("Expected all three handlers to be called once")
	}
}

// TestEventTypeFiltering verifies handlers only receive their subscribed type.
func TestEventTypeFiltering(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var startedCount, pausedCount int32

	bus.Subscribe(domain.EventSongStarted, func(domain.Event) { atomic.AddInt32(&startedCount, 1) })
	bus.Subscribe(domain.EventSongPaused, func(domain.Event) { atomic.AddInt32(&pausedCount, 1) })

	song := domain.Song{ID: "test"}
	bus.Publish(domain.NewSongStartedEvent(song))
	bus.Publish(domain.NewSongStartedEvent(song))
	bus.Publish(domain.NewSongPausedEvent(song, 0))

	if atomic.LoadInt32(&startedCount) != 2 {
		t.Errorf("Expected 2 started events, got %d", startedCount)
	}
	if atomic.LoadInt32(&pausedCount) != 1 {
		t.Errorf("Expected 1 paused event, got %d", pausedCount)
	}
}

// TestUnsubscribe tests that handlers stop receiving events.
func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32
	subID := bus.Subscribe(domain.EventSongStarted, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	song := domain.Song{ID: "test"}
	bus.Publish(domain.NewSongStartedEvent(song))

	bus.Unsubscribe(subID)
	bus.Publish(domain.NewSongStartedEvent(song))

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("Expected 1 call after unsubscribe, got %d", callCount)
	}

	// Unsubscribing an unknown ID is a no-op
	bus.Unsubscribe("sub-99999")
}

// TestSubscribeAll tests the catch-all subscription.
func TestSubscribeAll(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var events []domain.EventType
	var mu sync.Mutex

	bus.SubscribeAll(func(event domain.Event) {
		mu.Lock()
		events = append(events, event.Type())
		mu.Unlock()
	})

	song := domain.Song{ID: "test"}
	bus.Publish(domain.NewSongStartedEvent(song))
	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	bus.Publish(domain.NewQueueChangedEvent(nil))

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0] != domain.EventSongStarted || events[1] != domain.EventVolumeChanged || events[2] != domain.EventQueueChanged {
		t.Errorf("Unexpected event order: %v", events)
	}
}

// TestPanicRecovery verifies a panicking handler cannot take down the bus.
func TestPanicRecovery(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var afterCount int32

	bus.Subscribe(domain.EventSongStarted, func(domain.Event) {
		panic("handler exploded")
	})
	bus.Subscribe(domain.EventSongStarted, func(domain.Event) {
		atomic.AddInt32(&afterCount, 1)
	})

	bus.Publish(domain.NewSongStartedEvent(domain.Song{ID: "test"}))

	if atomic.LoadInt32(&afterCount) != 1 {
		t.Error("Expected subsequent handler to run despite panic")
	}
}

// TestHasSubscribers reports subscription presence per type.
func TestHasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	if bus.HasSubscribers(domain.EventSongStarted) {
		t.Error("Expected no subscribers initially")
	}

	subID := bus.Subscribe(domain.EventSongStarted, func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventSongStarted) {
		t.Error("Expected subscribers after Subscribe")
	}

	bus.Unsubscribe(subID)
	if bus.HasSubscribers(domain.EventSongStarted) {
		t.Error("Expected no subscribers after Unsubscribe")
	}
}

// TestPublishAfterClose verifies publishing on a closed bus is a no-op.
func TestPublishAfterClose(t *testing.T) {
	bus := NewSyncEventBus()

	var callCount int32
	bus.Subscribe(domain.EventSongStarted, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	bus.Publish(domain.NewSongStartedEvent(domain.Song{ID: "test"}))

	if atomic.LoadInt32(&callCount) != 0 {
		t.Errorf("Expected no calls after close, got %d", callCount)
	}
}

// TestConcurrentPublish hammers the bus from many goroutines.
func TestConcurrentPublish(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32
	bus.Subscribe(domain.EventSongProgress, func(domain.Event) {
		atomic.AddInt32(&callCount, 1)
	})

	var wg sync.WaitGroup
	const publishers = 10
	const perPublisher = 100

	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				bus.Publish(domain.NewSongProgressEvent(0, 0))
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&callCount); got != publishers*perPublisher {
		t.Errorf("Expected %d calls, got %d", publishers*perPublisher, got)
	}
}
