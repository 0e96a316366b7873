package unread

import (
	"context"
	"sync"
	"time"

	"colegio_backend/internal/logger"
	"colegio_backend/internal/models"
)

// DefaultDebounce coalesces bursts of source updates (five queries all
// resolving within the same tick after a cold load) into one recompute.
const DefaultDebounce = 100 * time.Millisecond

// MarkerReader is the slice of the read-marker store the engine needs.
type MarkerReader interface {
	GetAllReadIDs(ctx context.Context, userID string) (models.ReadIDSets, error)
}

// IDSource lists the item ids currently visible in one marker-tracked
// tab. A nil slice means "nothing loaded" and yields a zero count.
type IDSource func(ctx context.Context, userID string) ([]string, error)

// CountSource returns an already-resolved unread count. Mensajes
// (server-side receipts) and cambios (pending status) resolve their own
// counts; the engine never consults the marker store for them.
type CountSource func(ctx context.Context, userID string) (int64, error)

// Sources bundles the five upstream feeds.
type Sources struct {
	Novedades IDSource
	Eventos   IDSource
	Boletines IDSource
	Mensajes  CountSource
	Cambios   CountSource
}

// Engine recomputes the five-tab badge record whenever an upstream
// source reports a change. Bursts are debounced; results commit
// last-write-wins by trigger recency, enforced with a generation token,
// so an old in-flight recompute can never overwrite a newer one.
type Engine struct {
	session  func() string // current user id, "" when logged out
	store    MarkerReader
	sources  Sources
	state    *State
	debounce time.Duration

	notify chan struct{}

	mu        sync.Mutex
	gen       uint64 // bumped on every Notify
	committed uint64 // highest generation ever published
	closed    bool
}

func NewEngine(session func() string, store MarkerReader, sources Sources, state *State, debounce time.Duration) *Engine {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Engine{
		session:  session,
		store:    store,
		sources:  sources,
		state:    state,
		debounce: debounce,
		notify:   make(chan struct{}, 1),
	}
}

// State exposes the record this engine publishes into.
func (e *Engine) State() *State {
	return e.state
}

// Notify signals that an upstream source (or the session) changed.
// Non-blocking; safe from any goroutine.
func (e *Engine) Notify() {
	e.mu.Lock()
	e.gen++
	e.mu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// Run drives the debounce loop until ctx is cancelled. On shutdown the
// engine's last act is publishing zeros, so a logged-out session shows
// no badges without any network round trip.
func (e *Engine) Run(ctx context.Context) {
	timer := time.NewTimer(e.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return

		case <-e.notify:
			// Restart the quiet window; pending or in-flight work is
			// superseded (its generation is already stale).
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(e.debounce)

		case <-timer.C:
			e.mu.Lock()
			gen := e.gen
			e.mu.Unlock()
			go e.recompute(ctx, gen)
		}
	}
}

func (e *Engine) recompute(ctx context.Context, gen uint64) {
	counts := e.compute(ctx)
	e.commit(gen, counts)
}

// compute assembles the five counters. Everything degrades to zero or
// fail-open; this path never returns an error.
func (e *Engine) compute(ctx context.Context) Counts {
	userID := e.session()
	if userID == "" {
		return Counts{}
	}

	// One batched fetch for all three marker-tracked collections. On
	// failure the sets stay empty: fail open, every item counts as
	// unread rather than hiding badges.
	sets, err := e.store.GetAllReadIDs(ctx, userID)
	if err != nil {
		logger.Warn("read-id fetch failed, counting all items unread", "user_id", userID, "error", err)
		sets = models.NewReadIDSets()
	}

	return Counts{
		Novedades: e.countUnread(ctx, userID, e.sources.Novedades, sets.Novedades),
		Eventos:   e.countUnread(ctx, userID, e.sources.Eventos, sets.Eventos),
		Mensajes:  e.resolvedCount(ctx, userID, e.sources.Mensajes),
		Cambios:   e.resolvedCount(ctx, userID, e.sources.Cambios),
		Boletines: e.countUnread(ctx, userID, e.sources.Boletines, sets.Boletines),
	}
}

func (e *Engine) countUnread(ctx context.Context, userID string, source IDSource, readSet map[string]struct{}) int {
	if source == nil {
		return 0
	}
	ids, err := source(ctx, userID)
	if err != nil {
		// A failing source behaves like a not-yet-loaded one; the other
		// tabs are unaffected.
		logger.Warn("unread source failed", "user_id", userID, "error", err)
		return 0
	}

	count := 0
	for _, id := range ids {
		if _, ok := readSet[id]; !ok {
			count++
		}
	}
	return count
}

func (e *Engine) resolvedCount(ctx context.Context, userID string, source CountSource) int {
	if source == nil {
		return 0
	}
	n, err := source(ctx, userID)
	if err != nil {
		logger.Warn("unread count source failed", "user_id", userID, "error", err)
		return 0
	}
	return int(n)
}

// commit publishes iff this result still belongs to the newest trigger.
func (e *Engine) commit(gen uint64, counts Counts) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || gen != e.gen || gen <= e.committed {
		return
	}
	e.committed = gen
	e.state.publish(counts)
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.state.publish(Counts{})
}
