// Package events fans out completed-analysis notifications to live
// subscribers (the websocket feed).
package events

import (
	"sync"
	"time"
)

// Event is one completed analysis, trimmed down to what a live dashboard
// needs.
type Event struct {
	Kind           string    `json:"kind"`
	Language       string    `json:"language"`
	Summary        string    `json:"summary"`
	EnergySavedKWh float64   `json:"energy_saved_kwh"`
	UsedFallback   bool      `json:"used_fallback"`
	CreatedAt      time.Time `json:"created_at"`
}

const subscriberBuffer = 16

// Hub is an in-process publish/subscribe fan-out. Slow subscribers drop
// events rather than block publishers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// exactly once; after it returns, the channel is closed.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer.
func (h *Hub) Publish(ev Event) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
