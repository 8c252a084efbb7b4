package kioskService

import (
	"HospitalKiosk/internal/api/kiosk"
	"sync"
)

const subscriberBuffer = 16

// hub fans session events out to websocket subscribers. A subscriber that
// falls behind loses events rather than stalling the session.
type hub struct {
	mu     sync.Mutex
	subs   map[int]chan kiosk.Event
	next   int
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan kiosk.Event)}
}

func (h *hub) subscribe() (<-chan kiosk.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan kiosk.Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

func (h *hub) publish(ev kiosk.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
