package unread

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"colegio_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory MarkerReader with switchable failure and
// blocking behavior.
type fakeStore struct {
	mu      sync.Mutex
	sets    models.ReadIDSets
	err     error
	calls   int
	blockCh chan struct{} // when set, the next call blocks until closed
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: models.NewReadIDSets()}
}

func (f *fakeStore) GetAllReadIDs(ctx context.Context, userID string) (models.ReadIDSets, error) {
	f.mu.Lock()
	f.calls++
	block := f.blockCh
	f.blockCh = nil
	err := f.err
	sets := models.ReadIDSets{
		Novedades: copySet(f.sets.Novedades),
		Eventos:   copySet(f.sets.Eventos),
		Boletines: copySet(f.sets.Boletines),
	}
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return models.ReadIDSets{}, err
	}
	return sets, nil
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func (f *fakeStore) markRead(collection models.Collection, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.sets.Add(collection, id)
	}
}

func (f *fakeStore) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = models.NewReadIDSets()
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func staticIDs(ids ...string) IDSource {
	return func(ctx context.Context, userID string) ([]string, error) {
		return ids, nil
	}
}

func staticCount(n int64) CountSource {
	return func(ctx context.Context, userID string) (int64, error) {
		return n, nil
	}
}

// fiveTabSources models a session with five novedades, three eventos,
// four boletines, two unread mensajes and two pending cambios.
func fiveTabSources() Sources {
	return Sources{
		Novedades: staticIDs("n1", "n2", "n3", "n4", "n5"),
		Eventos:   staticIDs("e1", "e2", "e3"),
		Boletines: staticIDs("b1", "b2", "b3", "b4"),
		Mensajes:  staticCount(2),
		Cambios:   staticCount(2),
	}
}

func startEngine(t *testing.T, store MarkerReader, sources Sources) (*Engine, context.CancelFunc) {
	t.Helper()
	engine := NewEngine(func() string { return "user-1" }, store, sources, NewState(), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)
	return engine, cancel
}

func waitForCounts(t *testing.T, state *State, want Counts) {
	t.Helper()
	require.Eventually(t, func() bool {
		return state.Get() == want
	}, 2*time.Second, 5*time.Millisecond, "expected counts %+v, last seen %+v", want, state.Get())
}

func TestEngineColdLoadPublishesAllCounters(t *testing.T) {
	store := newFakeStore()
	engine, cancel := startEngine(t, store, fiveTabSources())
	defer cancel()

	engine.Notify()

	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})
}

func TestEngineMarkAsReadShrinksCount(t *testing.T) {
	store := newFakeStore()
	engine, cancel := startEngine(t, store, fiveTabSources())
	defer cancel()

	engine.Notify()
	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})

	store.markRead(models.CollectionNovedades, "n1", "n2")
	engine.Notify()

	waitForCounts(t, engine.State(), Counts{Novedades: 3, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})
}

func TestEngineClearRestoresFullCounts(t *testing.T) {
	store := newFakeStore()
	store.markRead(models.CollectionNovedades, "n1", "n2", "n3", "n4", "n5")
	store.markRead(models.CollectionEventos, "e1", "e2", "e3")

	engine, cancel := startEngine(t, store, fiveTabSources())
	defer cancel()

	engine.Notify()
	waitForCounts(t, engine.State(), Counts{Novedades: 0, Eventos: 0, Mensajes: 2, Cambios: 2, Boletines: 4})

	store.clear()
	engine.Notify()

	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})
}

func TestEngineDebounceCoalescesBursts(t *testing.T) {
	store := newFakeStore()
	engine, cancel := startEngine(t, store, fiveTabSources())
	defer cancel()

	for i := 0; i < 10; i++ {
		engine.Notify()
		time.Sleep(time.Millisecond)
	}

	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})

	// The whole burst fell inside one quiet window: a single fetch.
	assert.Equal(t, 1, store.callCount())
}

func TestEngineFailsOpenOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.markRead(models.CollectionNovedades, "n1", "n2")
	store.err = errors.New("backend down")

	engine, cancel := startEngine(t, store, fiveTabSources())
	defer cancel()

	engine.Notify()

	// Markers exist but cannot be fetched; everything counts as unread.
	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})
}

func TestEngineFailingSourceYieldsZeroForThatTabOnly(t *testing.T) {
	store := newFakeStore()
	sources := fiveTabSources()
	sources.Eventos = func(ctx context.Context, userID string) ([]string, error) {
		return nil, errors.New("agenda service down")
	}

	engine, cancel := startEngine(t, store, sources)
	defer cancel()

	engine.Notify()

	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 0, Mensajes: 2, Cambios: 2, Boletines: 4})
}

func TestEngineStaleRecomputeNeverOverwritesNewer(t *testing.T) {
	store := newFakeStore()
	release := make(chan struct{})
	store.blockCh = release // first fetch hangs until released

	engine, cancel := startEngine(t, store, fiveTabSources())
	defer cancel()

	// First trigger: its recompute blocks inside the store.
	engine.Notify()
	require.Eventually(t, func() bool {
		return store.callCount() == 1
	}, 2*time.Second, time.Millisecond)

	// Second trigger while the first is in flight; by then two markers
	// exist, so the newer result is 3.
	store.markRead(models.CollectionNovedades, "n1", "n2")
	engine.Notify()
	waitForCounts(t, engine.State(), Counts{Novedades: 3, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})

	// Now the stale recompute finishes with the old marker snapshot. Its
	// generation is superseded; the published record must not move.
	close(release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, Counts{Novedades: 3, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4}, engine.State().Get())
}

func TestEngineShutdownPublishesZeros(t *testing.T) {
	store := newFakeStore()
	engine, cancel := startEngine(t, store, fiveTabSources())

	engine.Notify()
	waitForCounts(t, engine.State(), Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})

	calls := store.callCount()
	cancel()

	waitForCounts(t, engine.State(), Counts{})
	// Zeros come from the shutdown path, not from another fetch.
	assert.Equal(t, calls, store.callCount())
}

func TestEngineLoggedOutSessionComputesZeros(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(func() string { return "" }, store, fiveTabSources(), NewState(), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	engine.Notify()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, Counts{}, engine.State().Get())
	assert.Equal(t, 0, store.callCount())
}

func TestStateSubscribeDeliversLatestValueOnly(t *testing.T) {
	state := NewState()
	ch, unsubscribe := state.Subscribe()
	defer unsubscribe()

	// Two publishes before the consumer reads: only the newest survives.
	state.publish(Counts{Novedades: 1})
	state.publish(Counts{Novedades: 2})

	got := <-ch
	assert.Equal(t, Counts{Novedades: 2}, got)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra value: %+v", extra)
	default:
	}
}

func TestHubDropStopsEngineAndPublishesZeros(t *testing.T) {
	store := newFakeStore()
	hub := NewHub(store, fiveTabSources(), 10*time.Millisecond)
	defer hub.Close()

	state := hub.State("user-1")
	waitForCounts(t, state, Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})

	hub.Drop("user-1")
	waitForCounts(t, state, Counts{})
}

func TestHubNotifyOnlyReachesRunningEngines(t *testing.T) {
	store := newFakeStore()
	hub := NewHub(store, fiveTabSources(), 10*time.Millisecond)
	defer hub.Close()

	state := hub.State("user-1")
	waitForCounts(t, state, Counts{Novedades: 5, Eventos: 3, Mensajes: 2, Cambios: 2, Boletines: 4})
	calls := store.callCount()

	// No engine exists for user-2; this must not start one.
	hub.Notify("user-2")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, calls, store.callCount())
}
