package services

import (
	"errors"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

const subscriberQueueDepth = 16

var (
	errSubscriberClosed = errors.New("subscriber is closed")
	errSubscriberBusy   = errors.New("subscriber queue is full")
)

// Subscriber is one live connection's outbound queue. The connection
// session drains Outbound and relays every payload verbatim to its
// transport.
type Subscriber struct {
	mu       sync.Mutex
	closed   bool
	outbound chan []byte
}

func NewSubscriber() *Subscriber {
	return &Subscriber{outbound: make(chan []byte, subscriberQueueDepth)}
}

func (s *Subscriber) Outbound() <-chan []byte {
	return s.outbound
}

// Close shuts the outbound queue. Safe to call more than once, but
// only after the subscriber has left every group it joined.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.outbound)
}

func (s *Subscriber) push(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSubscriberClosed
	}
	select {
	case s.outbound <- payload:
		return nil
	default:
		return errSubscriberBusy
	}
}

type spaceGroup struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

// Broadcaster keeps the per-space groups of live subscribers. Each
// space's group is independent; a broadcast in one space never touches
// another. Delivery is best-effort: a subscriber that cannot accept a
// payload is skipped, never letting one dead connection stall the
// rest of the group.
type Broadcaster struct {
	mu     sync.Mutex
	groups map[string]*spaceGroup
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{groups: make(map[string]*spaceGroup)}
}

// Join adds a subscriber to a space's group, creating the group on
// first use. Joining twice is a no-op. The registry lock is held
// across the insert; a concurrent Leave may otherwise drop the group
// between lookup and insert, stranding the newcomer in a group no
// broadcast can reach.
func (b *Broadcaster) Join(slug string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.groups[slug]
	if !ok {
		group = &spaceGroup{subscribers: make(map[*Subscriber]struct{})}
		b.groups[slug] = group
	}

	group.mu.Lock()
	group.subscribers[sub] = struct{}{}
	group.mu.Unlock()
}

// Leave removes a subscriber from a space's group. Leaving a group it
// never joined, or one that no longer exists, is a no-op. Empty
// groups are dropped.
func (b *Broadcaster) Leave(slug string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.groups[slug]
	if !ok {
		return
	}

	group.mu.Lock()
	delete(group.subscribers, sub)
	empty := len(group.subscribers) == 0
	group.mu.Unlock()

	if empty {
		delete(b.groups, slug)
	}
}

// GroupSize reports how many subscribers a space currently has.
func (b *Broadcaster) GroupSize(slug string) int {
	b.mu.Lock()
	group, ok := b.groups[slug]
	b.mu.Unlock()
	if !ok {
		return 0
	}

	group.mu.Lock()
	defer group.mu.Unlock()
	return len(group.subscribers)
}

// Broadcast delivers a message to every subscriber currently joined to
// the space. Broadcasting to a space with no group is a no-op.
func (b *Broadcaster) Broadcast(slug string, message any) {
	payload, err := jsoniter.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("space", slug).Msg("An error occurred when encoding broadcast message...")
		return
	}

	b.mu.Lock()
	group, ok := b.groups[slug]
	b.mu.Unlock()
	if !ok {
		return
	}

	group.mu.Lock()
	subscribers := make([]*Subscriber, 0, len(group.subscribers))
	for sub := range group.subscribers {
		subscribers = append(subscribers, sub)
	}
	group.mu.Unlock()

	for _, sub := range subscribers {
		if err := sub.push(payload); err != nil {
			log.Warn().Err(err).Str("space", slug).Msg("Skipped one subscriber during broadcast...")
		}
	}
}
