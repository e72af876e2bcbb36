// Package notify fans out values to subscribers without ever blocking the publisher.
package notify

import "sync"

// Subscription receives published values on C. Only the most recent unread value is kept:
// a slow reader skips intermediate values instead of stalling the publisher.
type Subscription[T any] struct {
	C <-chan T

	ch  chan T
	hub *Hub[T]
}

// Close detaches the subscription from its hub and closes C.
func (s *Subscription[T]) Close() {
	s.hub.remove(s)
}

type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*Subscription[T]]bool
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[*Subscription[T]]bool),
	}
}

func (h *Hub[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, 1)
	sub := &Subscription[T]{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = true
	return sub
}

func (h *Hub[T]) remove(sub *Subscription[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.subs[sub] {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Publish delivers v to every subscriber, replacing any value it has not read yet.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- v:
			continue
		default:
		}

		// Drop the stale value and retry; the hub lock keeps other publishers out.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- v:
		default:
		}
	}
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
