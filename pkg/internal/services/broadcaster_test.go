package services

import (
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
)

func drainPayloads(t *testing.T, sub *Subscriber, want int) [][]byte {
	t.Helper()

	payloads := make([][]byte, 0, want)
	for len(payloads) < want {
		select {
		case payload := <-sub.Outbound():
			payloads = append(payloads, payload)
		case <-time.After(time.Second):
			t.Fatalf("received %d payloads, want %d", len(payloads), want)
		}
	}
	return payloads
}

func TestBroadcastReachesEveryGroupMember(t *testing.T) {
	hub := NewBroadcaster()
	first := NewSubscriber()
	second := NewSubscriber()
	hub.Join("alpha", first)
	hub.Join("alpha", second)

	hub.Broadcast("alpha", ChatMessage{Message: "hello"})

	for _, sub := range []*Subscriber{first, second} {
		payloads := drainPayloads(t, sub, 1)
		var msg ChatMessage
		if err := jsoniter.Unmarshal(payloads[0], &msg); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if msg.Message != "hello" {
			t.Fatalf("message = %q, want %q", msg.Message, "hello")
		}
	}
}

func TestBroadcastIsScopedToOneSpace(t *testing.T) {
	hub := NewBroadcaster()
	alpha := NewSubscriber()
	beta := NewSubscriber()
	hub.Join("alpha", alpha)
	hub.Join("beta", beta)

	hub.Broadcast("beta", ChatMessage{Message: "for beta only"})

	select {
	case payload := <-alpha.Outbound():
		t.Fatalf("subscriber of alpha received %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
	drainPayloads(t, beta, 1)
}

func TestBroadcastToEmptySpaceIsNoop(t *testing.T) {
	hub := NewBroadcaster()

	// Neither an unknown space nor one whose last member left may
	// panic or block.
	hub.Broadcast("nobody-here", ChatMessage{Message: "hello?"})

	sub := NewSubscriber()
	hub.Join("alpha", sub)
	hub.Leave("alpha", sub)
	hub.Broadcast("alpha", ChatMessage{Message: "hello?"})

	select {
	case payload := <-sub.Outbound():
		t.Fatalf("departed subscriber received %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJoinAndLeaveAreIdempotent(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()

	hub.Join("alpha", sub)
	hub.Join("alpha", sub)
	if got := hub.GroupSize("alpha"); got != 1 {
		t.Fatalf("group size = %d, want 1", got)
	}

	hub.Leave("alpha", sub)
	hub.Leave("alpha", sub)
	hub.Leave("never-joined", sub)
	if got := hub.GroupSize("alpha"); got != 0 {
		t.Fatalf("group size = %d, want 0", got)
	}
}

func TestJoinDuringDepartureStillReceives(t *testing.T) {
	hub := NewBroadcaster()

	// A newcomer joining while the last member leaves must land in the
	// live group, not an orphaned one the registry already dropped.
	for i := 0; i < 1000; i++ {
		old := NewSubscriber()
		hub.Join("alpha", old)

		fresh := NewSubscriber()
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Leave("alpha", old)
		}()
		go func() {
			defer wg.Done()
			hub.Join("alpha", fresh)
		}()
		wg.Wait()

		hub.Broadcast("alpha", ChatMessage{Message: "still here"})
		drainPayloads(t, fresh, 1)

		hub.Leave("alpha", fresh)
		old.Close()
		fresh.Close()
	}
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	sub := NewSubscriber()
	sub.Close()
	sub.Close()

	if err := sub.push([]byte("late")); err == nil {
		t.Fatal("push after close must fail")
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := NewBroadcaster()
	slow := NewSubscriber()
	healthy := NewSubscriber()
	hub.Join("alpha", slow)
	hub.Join("alpha", healthy)

	// Nobody drains slow's queue; once full its deliveries are
	// skipped while the healthy subscriber keeps receiving.
	total := subscriberQueueDepth + 5
	received := make(chan int)
	go func() {
		var count int
		for range healthy.Outbound() {
			count++
			if count == total {
				break
			}
		}
		received <- count
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			hub.Broadcast("alpha", ChatMessage{Message: "tick"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}

	select {
	case count := <-received:
		if count != total {
			t.Fatalf("healthy subscriber received %d payloads, want %d", count, total)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("healthy subscriber starved by a slow one")
	}
}
