package memory

import (
	"context"
	"sync"
	"time"
)

const (
	// defaultMaxTurns keeps four exchanges (user + assistant each).
	defaultMaxTurns = 8
	defaultTTL      = 4 * time.Hour
)

// ShortTermHistory is an in-process conversation window. Each user's window
// is bounded to maxTurns and expires as a whole after ttl of inactivity.
type ShortTermHistory struct {
	maxTurns int
	ttl      time.Duration

	mu      sync.RWMutex
	windows map[string]*window

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type window struct {
	turns     []Turn
	expiresAt time.Time
}

// NewShortTermHistory creates a history service and starts its reaper.
// Non-positive arguments fall back to the defaults (8 turns, 4 hours).
func NewShortTermHistory(maxTurns int, ttl time.Duration) *ShortTermHistory {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &ShortTermHistory{
		maxTurns: maxTurns,
		ttl:      ttl,
		windows:  make(map[string]*window),
		ctx:      ctx,
		cancel:   cancel,
	}
	h.wg.Add(1)
	go h.reapLoop()
	return h
}

// Close stops the background reaper.
func (h *ShortTermHistory) Close() {
	h.cancel()
	h.wg.Wait()
}

// Recent returns a copy of the user's turns, oldest first. An expired window
// reads as empty.
func (h *ShortTermHistory) Recent(_ context.Context, userID string) ([]Turn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	w, ok := h.windows[userID]
	if !ok || time.Now().After(w.expiresAt) {
		return nil, nil
	}
	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out, nil
}

// AppendExchange records both halves of one exchange and refreshes the
// window's expiry.
func (h *ShortTermHistory) AppendExchange(_ context.Context, userID, userMessage, assistantReply string) error {
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[userID]
	if !ok || now.After(w.expiresAt) {
		w = &window{}
		h.windows[userID] = w
	}
	w.turns = append(w.turns,
		Turn{Role: RoleUser, Content: userMessage, Timestamp: now},
		Turn{Role: RoleAssistant, Content: assistantReply, Timestamp: now},
	)
	if excess := len(w.turns) - h.maxTurns; excess > 0 {
		w.turns = append(w.turns[:0], w.turns[excess:]...)
	}
	w.expiresAt = now.Add(h.ttl)
	return nil
}

func (h *ShortTermHistory) reapLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			now := time.Now()
			for userID, w := range h.windows {
				if now.After(w.expiresAt) {
					delete(h.windows, userID)
				}
			}
			h.mu.Unlock()
		}
	}
}

var _ HistoryService = (*ShortTermHistory)(nil)
