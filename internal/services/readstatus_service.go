package services

import (
	"context"
	"sync"
	"time"

	"colegio_backend/internal/logger"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/unread"
)

// writeTimeout bounds the background marker write so a hung backend
// cannot leak goroutines forever.
const writeTimeout = 10 * time.Second

// ReadStatusService is the single entry point screens and handlers use
// for read markers. It hides which storage strategy is wired and keeps
// the unread engines in sync with every mutation.
type ReadStatusService interface {
	// ForCollection builds a collection-scoped facade with its own
	// in-memory cache, pre-populated from the store.
	ForCollection(ctx context.Context, collection models.Collection, userID string) (*ContentReadStatus, error)

	IsRead(ctx context.Context, collection models.Collection, itemID, userID string) (bool, error)

	// MarkAsRead persists a marker. Storage failures are swallowed (the
	// caller's optimistic state stands); only an unknown collection is
	// an error.
	MarkAsRead(ctx context.Context, collection models.Collection, itemID, userID string) error

	// ClearAll wipes the user's markers: logout, or the explicit "mark
	// everything unread" settings action.
	ClearAll(ctx context.Context, userID string) error

	// GetAllReadIDs never fails: a broken backend yields empty sets so
	// badge computation fails open.
	GetAllReadIDs(ctx context.Context, userID string) models.ReadIDSets
}

type readStatusService struct {
	store repositories.ReadMarkerStore
	hub   *unread.Hub
}

func NewReadStatusService(store repositories.ReadMarkerStore, hub *unread.Hub) ReadStatusService {
	return &readStatusService{store: store, hub: hub}
}

func (s *readStatusService) ForCollection(ctx context.Context, collection models.Collection, userID string) (*ContentReadStatus, error) {
	if !collection.Valid() {
		return nil, repositories.ErrUnknownCollection
	}

	rs := &ContentReadStatus{
		collection: collection,
		userID:     userID,
		store:      s.store,
		hub:        s.hub,
		ids:        make(map[string]struct{}),
	}
	rs.Refresh(ctx)
	return rs, nil
}

func (s *readStatusService) IsRead(ctx context.Context, collection models.Collection, itemID, userID string) (bool, error) {
	return s.store.IsRead(ctx, collection, itemID, userID)
}

func (s *readStatusService) MarkAsRead(ctx context.Context, collection models.Collection, itemID, userID string) error {
	if !collection.Valid() {
		return repositories.ErrUnknownCollection
	}

	if err := s.store.MarkAsRead(ctx, collection, itemID, userID); err != nil {
		// Not retried; the marker is re-created the next time the user
		// opens the item. Never surfaced to the UI action.
		logger.Warn("read marker write failed",
			"collection", collection, "item_id", itemID, "user_id", userID, "error", err)
		return nil
	}

	s.hub.Notify(userID)
	return nil
}

func (s *readStatusService) ClearAll(ctx context.Context, userID string) error {
	if err := s.store.ClearAll(ctx, userID); err != nil {
		return err
	}
	s.hub.Notify(userID)
	return nil
}

func (s *readStatusService) GetAllReadIDs(ctx context.Context, userID string) models.ReadIDSets {
	sets, err := s.store.GetAllReadIDs(ctx, userID)
	if err != nil {
		logger.Warn("read-id fetch failed, treating all as unread", "user_id", userID, "error", err)
		return models.NewReadIDSets()
	}
	return sets
}

// ContentReadStatus is the collection-scoped facade screens talk to.
// Its cached id set answers IsRead synchronously, and MarkAsRead updates
// the cache before the storage write resolves, so a mark is visible to
// the very next IsRead in the same request.
type ContentReadStatus struct {
	collection models.Collection
	userID     string
	store      repositories.ReadMarkerStore
	hub        *unread.Hub

	mu  sync.RWMutex
	ids map[string]struct{}
}

// Refresh reloads the cache from the store. A failed load leaves an
// empty set: "nothing read yet", never an error that blocks the screen.
func (c *ContentReadStatus) Refresh(ctx context.Context) {
	sets, err := c.store.GetAllReadIDs(ctx, c.userID)
	if err != nil {
		logger.Warn("read status refresh failed",
			"collection", c.collection, "user_id", c.userID, "error", err)
		return
	}

	set := sets.Set(c.collection)
	c.mu.Lock()
	c.ids = make(map[string]struct{}, len(set))
	for id := range set {
		c.ids[id] = struct{}{}
	}
	c.mu.Unlock()
}

// IsRead is a synchronous membership test against the cache.
func (c *ContentReadStatus) IsRead(itemID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[itemID]
	return ok
}

// MarkAsRead records the marker optimistically and persists it in the
// background. The cache update is never rolled back on write failure.
func (c *ContentReadStatus) MarkAsRead(ctx context.Context, itemID string) {
	c.mu.Lock()
	c.ids[itemID] = struct{}{}
	c.mu.Unlock()

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := c.store.MarkAsRead(writeCtx, c.collection, itemID, c.userID); err != nil {
			logger.Warn("background read marker write failed",
				"collection", c.collection, "item_id", itemID, "user_id", c.userID, "error", err)
			return
		}
		c.hub.Notify(c.userID)
	}()
}

// Identifiable is anything addressable by an item id.
type Identifiable interface {
	GetID() string
}

// FilterUnread returns the unread subsequence of items, preserving
// order. Items without an id are dropped defensively.
func FilterUnread[T Identifiable](rs *ContentReadStatus, items []T) []T {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]T, 0, len(items))
	for _, item := range items {
		id := item.GetID()
		if id == "" {
			continue
		}
		if _, ok := rs.ids[id]; !ok {
			out = append(out, item)
		}
	}
	return out
}
