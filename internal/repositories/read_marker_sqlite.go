package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"colegio_backend/internal/models"

	_ "modernc.org/sqlite"
)

// sqliteReadMarkerStore is the local strategy: markers live in an
// embedded sqlite file on the device running the app, for deployments
// without a reachable marker table (historically this store was keyed by
// collection only; it is user-scoped now so switching strategies does not
// change the contract).
type sqliteReadMarkerStore struct {
	db *sql.DB
}

const sqliteReadMarkerSchema = `
	CREATE TABLE IF NOT EXISTS read_markers (
		user_id    TEXT NOT NULL,
		collection TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		read_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, collection, item_id)
	)`

// NewSQLiteReadMarkerStore opens (and if needed creates) the marker file.
func NewSQLiteReadMarkerStore(path string) (ReadMarkerStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open read marker store: %w", err)
	}

	if _, err := db.Exec(sqliteReadMarkerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init read marker schema: %w", err)
	}

	return &sqliteReadMarkerStore{db: db}, nil
}

func (r *sqliteReadMarkerStore) GetAllReadIDs(ctx context.Context, userID string) (models.ReadIDSets, error) {
	sets := models.NewReadIDSets()

	rows, err := r.db.QueryContext(ctx,
		`SELECT collection, item_id FROM read_markers WHERE user_id = ?`, userID)
	if err != nil {
		return sets, fmt.Errorf("failed to load read markers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var collection, itemID string
		if err := rows.Scan(&collection, &itemID); err != nil {
			return sets, fmt.Errorf("failed to scan read marker: %w", err)
		}
		sets.Add(models.Collection(collection), itemID)
	}
	if err := rows.Err(); err != nil {
		return sets, fmt.Errorf("error iterating read markers: %w", err)
	}

	return sets, nil
}

func (r *sqliteReadMarkerStore) IsRead(ctx context.Context, collection models.Collection, itemID, userID string) (bool, error) {
	if !collection.Valid() {
		return false, ErrUnknownCollection
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM read_markers WHERE user_id = ? AND collection = ? AND item_id = ?`,
		userID, string(collection), itemID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check read marker: %w", err)
	}
	return count > 0, nil
}

func (r *sqliteReadMarkerStore) MarkAsRead(ctx context.Context, collection models.Collection, itemID, userID string) error {
	if !collection.Valid() {
		return ErrUnknownCollection
	}

	// INSERT OR IGNORE against the composite primary key makes
	// re-marking a no-op.
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO read_markers (user_id, collection, item_id) VALUES (?, ?, ?)`,
		userID, string(collection), itemID)
	if err != nil {
		return fmt.Errorf("failed to insert read marker: %w", err)
	}
	return nil
}

func (r *sqliteReadMarkerStore) ClearAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM read_markers WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear read markers: %w", err)
	}
	return nil
}
