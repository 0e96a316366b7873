package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"colegio_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) ReadMarkerStore {
	t.Helper()
	store, err := NewSQLiteReadMarkerStore(filepath.Join(t.TempDir(), "markers.db"))
	require.NoError(t, err)
	return store
}

func TestSQLiteMarkAsReadIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-1"))

	read, err := store.IsRead(ctx, models.CollectionNovedades, "n1", "user-1")
	require.NoError(t, err)
	assert.True(t, read)

	sets, err := store.GetAllReadIDs(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, sets.Novedades, 1)
}

func TestSQLiteRejectsUnknownCollection(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	err := store.MarkAsRead(ctx, models.Collection("mensajes"), "m1", "user-1")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = store.IsRead(ctx, models.Collection(""), "m1", "user-1")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestSQLiteGetAllReadIDsBucketsByCollection(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n2", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionEventos, "e1", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionBoletines, "b1", "user-1"))

	sets, err := store.GetAllReadIDs(ctx, "user-1")
	require.NoError(t, err)

	assert.Len(t, sets.Novedades, 2)
	assert.Len(t, sets.Eventos, 1)
	assert.Len(t, sets.Boletines, 1)
	assert.True(t, sets.Contains(models.CollectionNovedades, "n2"))
	assert.False(t, sets.Contains(models.CollectionEventos, "n1"))
}

func TestSQLiteMarkersAreScopedPerUser(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-1"))

	read, err := store.IsRead(ctx, models.CollectionNovedades, "n1", "user-2")
	require.NoError(t, err)
	assert.False(t, read)

	sets, err := store.GetAllReadIDs(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, sets.Novedades)
}

func TestSQLiteClearAllOnlyAffectsOneUser(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionEventos, "e1", "user-1"))
	require.NoError(t, store.MarkAsRead(ctx, models.CollectionNovedades, "n1", "user-2"))

	require.NoError(t, store.ClearAll(ctx, "user-1"))

	sets, err := store.GetAllReadIDs(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, sets.Novedades)
	assert.Empty(t, sets.Eventos)

	read, err := store.IsRead(ctx, models.CollectionNovedades, "n1", "user-2")
	require.NoError(t, err)
	assert.True(t, read)
}
