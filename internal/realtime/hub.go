package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pathwise/engage-backend/internal/types"
)

// Hub routes forwarded reward messages to in-process subscribers (the SSE
// streams of connected clients). Slow subscribers drop messages instead of
// blocking the forwarder.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan *types.RewardEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[uuid.UUID]map[chan *types.RewardEvent]struct{}{}}
}

func (h *Hub) Subscribe(userID uuid.UUID) (<-chan *types.RewardEvent, func()) {
	ch := make(chan *types.RewardEvent, 8)

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = map[chan *types.RewardEvent]struct{}{}
		h.subs[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Dispatch(m RewardMessage) {
	if m.Event == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[m.UserID] {
		select {
		case ch <- m.Event:
		default:
		}
	}
}
