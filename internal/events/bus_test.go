package events

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEventBus_Subscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Publish(NewChatContextClearedEvent("s-1"))

	select {
	case received := <-ch:
		if received.EventType() != TypeChatContextCleared {
			t.Errorf("expected %s, got %s", TypeChatContextCleared, received.EventType())
		}
		if received.SessionID() != "s-1" {
			t.Errorf("expected s-1, got %s", received.SessionID())
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	commandCh := bus.Subscribe(TypeChatCommandProposed)
	allCh := bus.Subscribe()

	bus.Publish(NewChatContextClearedEvent("s-1"))
	bus.Publish(NewChatCommandProposedEvent("s-1", "listWorkspaces", map[string]any{}))

	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("allCh should receive event %d", i)
		}
	}

	select {
	case received := <-commandCh:
		if received.EventType() != TypeChatCommandProposed {
			t.Errorf("expected %s, got %s", TypeChatCommandProposed, received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("commandCh should receive the command event")
	}

	select {
	case e := <-commandCh:
		t.Errorf("commandCh received unexpected %s", e.EventType())
	default:
	}
}

func TestEventBus_SubscribeSession(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	chA := bus.SubscribeSession("a")
	chAll := bus.SubscribeSession("")

	bus.Publish(NewChatContextClearedEvent("a"))
	bus.Publish(NewChatContextClearedEvent("b"))

	select {
	case e := <-chA:
		if e.SessionID() != "a" {
			t.Errorf("chA received session %s", e.SessionID())
		}
	default:
		t.Fatal("chA should have received an event")
	}
	select {
	case e := <-chA:
		t.Errorf("chA should not receive session %s", e.SessionID())
	default:
	}

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-chAll:
			count++
		default:
		}
	}
	if count != 2 {
		t.Errorf("chAll should receive 2 events, got %d", count)
	}
}

func TestEventBus_RingBufferDropsOldest(t *testing.T) {
	bus := New(5)
	defer bus.Close()

	ch := bus.Subscribe()
	for i := 0; i < 10; i++ {
		bus.Publish(NewChatTurnFailedEvent("s-1", fmt.Sprintf("err-%d", i)))
	}

	if bus.DroppedCount() == 0 {
		t.Error("expected some events to be dropped")
	}

	var last Event
	received := 0
drain:
	for {
		select {
		case e := <-ch:
			last = e
			received++
		default:
			break drain
		}
	}

	if received != 5 {
		t.Errorf("received %d events, want 5", received)
	}
	if failed, ok := last.(ChatTurnFailedEvent); !ok || failed.Error != "err-9" {
		t.Errorf("newest event should survive, got %#v", last)
	}
}

func TestEventBus_ConcurrentPublish(t *testing.T) {
	bus := New(100)
	defer bus.Close()

	const sessions = 5
	const perSession = 100

	channels := make([]<-chan Event, sessions)
	for i := range channels {
		channels[i] = bus.SubscribeSession(fmt.Sprintf("s-%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perSession; j++ {
				bus.Publish(NewChatContextClearedEvent(fmt.Sprintf("s-%d", id)))
			}
		}(i)
	}
	wg.Wait()

	for i, ch := range channels {
		want := fmt.Sprintf("s-%d", i)
		count := 0
	drain:
		for {
			select {
			case e := <-ch:
				if e.SessionID() != want {
					t.Errorf("channel %d received session %s", i, e.SessionID())
				}
				count++
			default:
				break drain
			}
		}
		if count != perSession {
			t.Errorf("channel %d received %d events, want %d", i, count, perSession)
		}
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	other := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if got := bus.SubscriberCount(); got != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", got)
	}

	bus.Publish(NewChatContextClearedEvent("s"))
	select {
	case <-other:
	default:
		t.Error("remaining subscriber should still receive events")
	}
}

func TestEventBus_SubscribeOnClosedBus(t *testing.T) {
	bus := New(10)
	bus.Close()
	bus.Close()

	ch := bus.SubscribeSession("a")
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
	bus.Publish(NewChatContextClearedEvent("a"))
}
