package repositories

import (
	"context"
	"errors"

	"colegio_backend/internal/models"
)

var (
	// ErrUnknownCollection: collection name outside the tracked enum.
	// The only marker-store error that callers are expected to treat as
	// a bug rather than degrade around.
	ErrUnknownCollection = errors.New("unknown read-tracked collection")
)

// ReadMarkerStore persists per-user read markers for the three
// marker-tracked collections (novedades, eventos, boletines).
//
// Two interchangeable strategies implement it: the server strategy keeps
// markers in the main database, the local strategy in an embedded sqlite
// file. Callers must not depend on which one is wired.
//
// Failure semantics are asymmetric on purpose: GetAllReadIDs degrades to
// empty sets so badge computation can fail open to "everything unread";
// MarkAsRead failures must never undo optimistic caller state.
type ReadMarkerStore interface {
	// GetAllReadIDs fetches the user's read-id sets for all tracked
	// collections in a single query.
	GetAllReadIDs(ctx context.Context, userID string) (models.ReadIDSets, error)

	// IsRead checks a single marker.
	IsRead(ctx context.Context, collection models.Collection, itemID, userID string) (bool, error)

	// MarkAsRead inserts a marker. Idempotent: marking an already-read
	// item is a no-op, not an error.
	MarkAsRead(ctx context.Context, collection models.Collection, itemID, userID string) error

	// ClearAll deletes every marker the user owns across all tracked
	// collections (logout, or the explicit "mark everything unread"
	// settings action).
	ClearAll(ctx context.Context, userID string) error
}
