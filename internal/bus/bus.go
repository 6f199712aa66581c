package bus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/synthscroll/internal/wire"
)

// Envelope is one delivered message.
type Envelope struct {
	Seq     int64
	Topic   wire.Topic
	Payload []byte
}

// Handler receives envelopes. It runs on the publisher's goroutine and must
// not block.
type Handler func(Envelope)

// Bus is the publish/subscribe surface components depend on.
type Bus interface {
	Publish(topic wire.Topic, payload []byte) Envelope
	Subscribe(topic wire.Topic, h Handler) *Subscription
	SubscribeOnce(topic wire.Topic, accept func(Envelope) bool) *Subscription
}

// Broker is the in-process Bus implementation.
type Broker struct {
	mu     sync.Mutex
	clock  *Clock
	subs   map[wire.Topic][]*Subscription
	taps   []Handler
	nextID uint64
}

// Subscription is a registered handler. Unsubscribe is idempotent.
type Subscription struct {
	id     uint64
	topic  wire.Topic
	broker *Broker
	h      Handler
	done   atomic.Bool
}

// NewBroker creates an empty broker with its own logical clock.
func NewBroker() *Broker {
	return NewBrokerWithClock(NewClock())
}

// NewBrokerWithClock creates a broker stamping envelopes from clock.
func NewBrokerWithClock(clock *Clock) *Broker {
	return &Broker{
		clock: clock,
		subs:  make(map[wire.Topic][]*Subscription),
	}
}

// Publish stamps the payload and delivers a private copy to each subscriber
// of topic, then to every tap. It never fails: with no subscribers the
// message is simply dropped.
func (b *Broker) Publish(topic wire.Topic, payload []byte) Envelope {
	b.mu.Lock()
	env := Envelope{Seq: b.clock.Next(), Topic: topic, Payload: clonePayload(payload)}
	subs := append([]*Subscription(nil), b.subs[topic]...)
	taps := append([]Handler(nil), b.taps...)
	b.mu.Unlock()

	if len(subs) == 0 {
		slog.Debug("bus publish with no subscribers", "topic", topic, "seq", env.Seq)
	}

	for _, s := range subs {
		if s.done.Load() {
			continue
		}
		s.h(Envelope{Seq: env.Seq, Topic: topic, Payload: clonePayload(env.Payload)})
	}
	for _, tap := range taps {
		tap(Envelope{Seq: env.Seq, Topic: topic, Payload: clonePayload(env.Payload)})
	}
	return env
}

// Subscribe registers h for every envelope published on topic.
func (b *Broker) Subscribe(topic wire.Topic, h Handler) *Subscription {
	s := &Subscription{topic: topic, broker: b, h: h}
	b.register(s)
	return s
}

func (b *Broker) register(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s.id = b.nextID
	b.subs[s.topic] = append(b.subs[s.topic], s)
}

// SubscribeOnce registers a one-shot subscription. accept is called for each
// envelope on topic until it returns true; the subscription is removed at
// that point and no later envelope reaches it.
//
// At most one envelope is ever accepted, even with concurrent publishers.
func (b *Broker) SubscribeOnce(topic wire.Topic, accept func(Envelope) bool) *Subscription {
	s := &Subscription{topic: topic, broker: b}
	var mu sync.Mutex
	s.h = func(env Envelope) {
		mu.Lock()
		defer mu.Unlock()
		if s.done.Load() || !accept(env) {
			return
		}
		s.Unsubscribe()
	}
	b.register(s)
	return s
}

// Tap registers a handler that observes every envelope on every topic, after
// regular subscribers. Used for logging and the message store.
func (b *Broker) Tap(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taps = append(b.taps, h)
}

// SubscriberCount returns the live subscriptions on topic.
func (b *Broker) SubscriberCount(topic wire.Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Clock returns the broker's envelope clock.
func (b *Broker) Clock() *Clock {
	return b.clock
}

// Unsubscribe removes the subscription. Safe to call more than once and from
// inside the subscription's own handler.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.done.CompareAndSwap(false, true) {
		return
	}
	b := s.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[s.topic]
	for i, other := range list {
		if other.id == s.id {
			b.subs[s.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
}

// Active reports whether the subscription still receives envelopes.
func (s *Subscription) Active() bool {
	return s != nil && !s.done.Load()
}

func clonePayload(p []byte) []byte {
	if p == nil {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}
