package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/unread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memMarkerStore is an in-memory ReadMarkerStore with switchable
// failures.
type memMarkerStore struct {
	mu       sync.Mutex
	sets     models.ReadIDSets
	writeErr error
	readErr  error
	writes   int
}

func newMemMarkerStore() *memMarkerStore {
	return &memMarkerStore{sets: models.NewReadIDSets()}
}

func (m *memMarkerStore) GetAllReadIDs(ctx context.Context, userID string) (models.ReadIDSets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return models.ReadIDSets{}, m.readErr
	}
	out := models.NewReadIDSets()
	for _, c := range models.TrackedCollections {
		for id := range m.sets.Set(c) {
			out.Add(c, id)
		}
	}
	return out, nil
}

func (m *memMarkerStore) IsRead(ctx context.Context, collection models.Collection, itemID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets.Contains(collection, itemID), nil
}

func (m *memMarkerStore) MarkAsRead(ctx context.Context, collection models.Collection, itemID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.sets.Add(collection, itemID)
	return nil
}

func (m *memMarkerStore) ClearAll(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = models.NewReadIDSets()
	return nil
}

func (m *memMarkerStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func newTestHub(store repositories.ReadMarkerStore) *unread.Hub {
	return unread.NewHub(store, unread.Sources{}, 10*time.Millisecond)
}

func TestMarkAsReadRejectsUnknownCollection(t *testing.T) {
	store := newMemMarkerStore()
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	err := svc.MarkAsRead(context.Background(), models.Collection("mensajes"), "m1", "user-1")
	assert.ErrorIs(t, err, repositories.ErrUnknownCollection)
}

func TestMarkAsReadSwallowsStorageFailure(t *testing.T) {
	store := newMemMarkerStore()
	store.writeErr = errors.New("disk full")
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	err := svc.MarkAsRead(context.Background(), models.CollectionNovedades, "n1", "user-1")
	assert.NoError(t, err)
}

func TestGetAllReadIDsFailsOpenToEmptySets(t *testing.T) {
	store := newMemMarkerStore()
	store.readErr = errors.New("backend down")
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	sets := svc.GetAllReadIDs(context.Background(), "user-1")
	assert.Empty(t, sets.Novedades)
	assert.Empty(t, sets.Eventos)
	assert.Empty(t, sets.Boletines)
}

func TestContentReadStatusOptimisticMark(t *testing.T) {
	store := newMemMarkerStore()
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	rs, err := svc.ForCollection(context.Background(), models.CollectionNovedades, "user-1")
	require.NoError(t, err)

	assert.False(t, rs.IsRead("n1"))

	// Visible to the very next IsRead, before the background write lands.
	rs.MarkAsRead(context.Background(), "n1")
	assert.True(t, rs.IsRead("n1"))

	require.Eventually(t, func() bool {
		ok, _ := store.IsRead(context.Background(), models.CollectionNovedades, "n1", "user-1")
		return ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestContentReadStatusMarkSurvivesWriteFailure(t *testing.T) {
	store := newMemMarkerStore()
	store.writeErr = errors.New("disk full")
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	rs, err := svc.ForCollection(context.Background(), models.CollectionNovedades, "user-1")
	require.NoError(t, err)

	rs.MarkAsRead(context.Background(), "n1")

	require.Eventually(t, func() bool {
		return store.writeCount() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	// The optimistic cache entry is never rolled back.
	assert.True(t, rs.IsRead("n1"))
}

func TestContentReadStatusRefreshLoadsExistingMarkers(t *testing.T) {
	store := newMemMarkerStore()
	require.NoError(t, store.MarkAsRead(context.Background(), models.CollectionEventos, "e2", "user-1"))
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	rs, err := svc.ForCollection(context.Background(), models.CollectionEventos, "user-1")
	require.NoError(t, err)

	assert.True(t, rs.IsRead("e2"))
	assert.False(t, rs.IsRead("e1"))
}

func TestForCollectionRejectsUnknownCollection(t *testing.T) {
	store := newMemMarkerStore()
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	_, err := svc.ForCollection(context.Background(), models.Collection("cambios"), "user-1")
	assert.ErrorIs(t, err, repositories.ErrUnknownCollection)
}

type fakeItem struct{ id string }

func (f fakeItem) GetID() string { return f.id }

func TestFilterUnreadKeepsOrderAndDropsRead(t *testing.T) {
	store := newMemMarkerStore()
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	rs, err := svc.ForCollection(context.Background(), models.CollectionNovedades, "user-1")
	require.NoError(t, err)

	rs.MarkAsRead(context.Background(), "b")
	rs.MarkAsRead(context.Background(), "d")

	items := []fakeItem{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}
	got := FilterUnread(rs, items)

	assert.Equal(t, []fakeItem{{"a"}, {"c"}, {"e"}}, got)
}

func TestFilterUnreadDropsItemsWithoutID(t *testing.T) {
	store := newMemMarkerStore()
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	rs, err := svc.ForCollection(context.Background(), models.CollectionNovedades, "user-1")
	require.NoError(t, err)

	items := []fakeItem{{"a"}, {""}, {"b"}}
	assert.Equal(t, []fakeItem{{"a"}, {"b"}}, FilterUnread(rs, items))
}

func TestFilterUnreadEmptyInput(t *testing.T) {
	store := newMemMarkerStore()
	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	rs, err := svc.ForCollection(context.Background(), models.CollectionNovedades, "user-1")
	require.NoError(t, err)

	assert.Empty(t, FilterUnread(rs, []fakeItem{}))
}

func TestClearAllWipesEveryCollection(t *testing.T) {
	store := newMemMarkerStore()
	ctx := context.Background()
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionBoletines, "b1", "user-1"))

	hub := newTestHub(store)
	defer hub.Close()
	svc := NewReadStatusService(store, hub)

	require.NoError(t, svc.ClearAll(ctx, "user-1"))

	sets := svc.GetAllReadIDs(ctx, "user-1")
	assert.Empty(t, sets.Novedades)
	assert.Empty(t, sets.Boletines)
}
