// Package bus implements the in-process event bus that correlates the
// asynchronous pipeline stages. Events are keyed by name and stamped with the
// batch id they belong to. Delivery is immediate and ordered per publisher;
// there is no history replay.
package bus

import "sync"

type Event struct {
	Name    string `json:"name"`
	BatchID string `json:"batchId"`
	Payload any    `json:"payload"`
}

type Subscription struct {
	// C receives matching events. It is closed when the subscription is
	// dropped for falling behind, or when the subscription or bus closes.
	C <-chan Event

	c     chan Event
	names map[string]struct{}
	bus   *Bus
	once  sync.Once
}

type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func New() *Bus {
	return &Bus{
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscriber for the given event names with a bounded
// buffer. A subscriber that lets the buffer fill up is dropped so that a slow
// or disconnected consumer never blocks publishers.
func (b *Bus) Subscribe(buffer int, names ...string) *Subscription {
	if buffer < 1 {
		buffer = 1
	}

	sub := &Subscription{
		c:     make(chan Event, buffer),
		names: make(map[string]struct{}, len(names)),
		bus:   b,
	}
	sub.C = sub.c

	for _, name := range names {
		sub.names[name] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.c)
		return sub
	}

	b.subs[sub] = struct{}{}

	return sub
}

// Publish delivers the event to every subscriber interested in its name.
// Publishing never blocks: subscribers whose buffer is full are removed and
// their channel closed.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for sub := range b.subs {
		if _, ok := sub.names[e.Name]; !ok {
			continue
		}

		select {
		case sub.c <- e:
		default:
			delete(b.subs, sub)
			close(sub.c)
		}
	}
}

// Close drops all subscribers and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.c)
	}
}

// Close detaches the subscription from the bus and closes its channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if _, ok := s.bus.subs[s]; ok {
			delete(s.bus.subs, s)
			close(s.c)
		}
	})
}
