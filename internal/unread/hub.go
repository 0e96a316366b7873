package unread

import (
	"context"
	"sync"
	"time"

	"colegio_backend/internal/logger"
)

// Hub owns one engine per authenticated user session. Services notify
// the hub on content mutations; the hub fans the signal out to the
// affected engines. Exactly one engine exists per user at a time.
type Hub struct {
	store    MarkerReader
	sources  Sources
	debounce time.Duration

	mu      sync.Mutex
	engines map[string]*engineEntry
	closed  bool
}

type engineEntry struct {
	engine *Engine
	cancel context.CancelFunc

	mu       sync.Mutex
	loggedIn bool
}

func (en *engineEntry) userID(id string) func() string {
	return func() string {
		en.mu.Lock()
		defer en.mu.Unlock()
		if !en.loggedIn {
			return ""
		}
		return id
	}
}

func NewHub(store MarkerReader, sources Sources, debounce time.Duration) *Hub {
	return &Hub{
		store:    store,
		sources:  sources,
		debounce: debounce,
		engines:  make(map[string]*engineEntry),
	}
}

// Engine returns the user's engine, starting one (with an initial
// recompute) on first use.
func (h *Hub) Engine(userID string) *Engine {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.engines[userID]; ok {
		return entry.engine
	}

	entry := &engineEntry{loggedIn: true}
	engine := NewEngine(entry.userID(userID), h.store, h.sources, NewState(), h.debounce)
	ctx, cancel := context.WithCancel(context.Background())
	entry.engine = engine
	entry.cancel = cancel
	h.engines[userID] = entry

	go engine.Run(ctx)
	engine.Notify() // cold-load recompute

	logger.Debug("unread engine started", "user_id", userID)
	return engine
}

// State returns the user's badge record, creating the engine if needed.
func (h *Hub) State(userID string) *State {
	return h.Engine(userID).State()
}

// Notify signals a change relevant to specific users. Users without a
// running engine are skipped; their counts are computed on demand when
// they next connect.
func (h *Hub) Notify(userIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range userIDs {
		if entry, ok := h.engines[id]; ok {
			entry.engine.Notify()
		}
	}
}

// NotifyAll signals a change visible to everyone (a published
// announcement, a new agenda entry).
func (h *Hub) NotifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, entry := range h.engines {
		entry.engine.Notify()
	}
}

// Drop tears a session down on logout: the engine publishes zeros and
// stops, and the user id is forgotten.
func (h *Hub) Drop(userID string) {
	h.mu.Lock()
	entry, ok := h.engines[userID]
	if ok {
		delete(h.engines, userID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	entry.mu.Lock()
	entry.loggedIn = false
	entry.mu.Unlock()
	entry.cancel()

	logger.Debug("unread engine dropped", "user_id", userID)
}

// Close stops every engine.
func (h *Hub) Close() {
	h.mu.Lock()
	entries := make([]*engineEntry, 0, len(h.engines))
	for _, entry := range h.engines {
		entries = append(entries, entry)
	}
	h.engines = make(map[string]*engineEntry)
	h.closed = true
	h.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
	}
}
