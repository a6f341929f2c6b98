package memorybus

import (
	"sync"

	"github.com/salam-labs/adzan/internal/ports"
)

type subscriber struct {
	ch     chan ports.Event
	topics map[string]struct{}
}

func (s *subscriber) wants(topic string) bool {
	if len(s.topics) == 0 {
		return true
	}
	_, ok := s.topics[topic]
	return ok
}

type Bus struct {
	mu      sync.Mutex
	subs    map[chan ports.Event]*subscriber
	alive   bool
	dropped uint64
}

func New() *Bus {
	return &Bus{subs: make(map[chan ports.Event]*subscriber), alive: true}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch, sub := range b.subs {
		if !sub.wants(topic) {
			continue
		}
		select {
		case ch <- evt:
		default:
			// drop si l'abonné est trop lent
			b.dropped++
		}
	}
}

func (b *Bus) Subscribe(topics ...string) (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, 64)
	sub := &subscriber{ch: ch}
	if len(topics) > 0 {
		sub.topics = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}

	b.mu.Lock()
	if !b.alive {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	b.subs[ch] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

// Dropped compte les events perdus faute de place chez un abonné.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close ferme tous les abonnements ; les Publish suivants sont ignorés.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	b.alive = false
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
