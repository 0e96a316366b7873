package repositories

import (
	"context"
	"time"

	"colegio_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormReadMarkerStore is the server strategy: markers live in the main
// database next to the content they reference.
type gormReadMarkerStore struct {
	db *gorm.DB
}

func NewGormReadMarkerStore(db *gorm.DB) ReadMarkerStore {
	return &gormReadMarkerStore{db: db}
}

func (r *gormReadMarkerStore) GetAllReadIDs(ctx context.Context, userID string) (models.ReadIDSets, error) {
	sets := models.NewReadIDSets()

	var rows []models.ReadMarker
	err := r.db.WithContext(ctx).
		Select("collection", "item_id").
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return sets, err
	}

	for _, row := range rows {
		sets.Add(row.Collection, row.ItemID)
	}
	return sets, nil
}

func (r *gormReadMarkerStore) IsRead(ctx context.Context, collection models.Collection, itemID, userID string) (bool, error) {
	if !collection.Valid() {
		return false, ErrUnknownCollection
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReadMarker{}).
		Where("user_id = ? AND collection = ? AND item_id = ?", userID, collection, itemID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormReadMarkerStore) MarkAsRead(ctx context.Context, collection models.Collection, itemID, userID string) error {
	if !collection.Valid() {
		return ErrUnknownCollection
	}

	marker := models.ReadMarker{
		ID:         uuid.NewString(),
		UserID:     userID,
		Collection: collection,
		ItemID:     itemID,
		ReadAt:     time.Now(),
	}

	// ON CONFLICT DO NOTHING on the (user, collection, item) unique
	// index keeps re-marking idempotent.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "collection"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(&marker).Error
}

func (r *gormReadMarkerStore) ClearAll(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ReadMarker{}).Error
}
