package models

import "time"

// Collection names the three tabs whose read state is tracked through
// read markers. Mensajes uses server-side message receipts and cambios
// uses request status, so neither appears here.
type Collection string

const (
	CollectionNovedades Collection = "novedades"
	CollectionEventos   Collection = "eventos"
	CollectionBoletines Collection = "boletines"
)

// TrackedCollections in stable order.
var TrackedCollections = []Collection{
	CollectionNovedades,
	CollectionEventos,
	CollectionBoletines,
}

func (c Collection) Valid() bool {
	switch c {
	case CollectionNovedades, CollectionEventos, CollectionBoletines:
		return true
	}
	return false
}

// ReadMarker records that a user has seen one content item. At most one
// logical marker exists per (user, collection, item); re-marking is a
// no-op at the storage layer.
type ReadMarker struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string     `gorm:"index:idx_marker_user_coll_item,unique;not null" json:"user_id"`
	Collection Collection `gorm:"index:idx_marker_user_coll_item,unique;type:varchar(16);not null" json:"collection"`
	ItemID     string     `gorm:"index:idx_marker_user_coll_item,unique;not null" json:"item_id"`
	ReadAt     time.Time  `json:"read_at"`
}

func (ReadMarker) TableName() string {
	return "read_markers"
}

// ReadIDSets is the result of the batched per-user marker fetch: one id
// set per tracked collection.
type ReadIDSets struct {
	Novedades map[string]struct{}
	Eventos   map[string]struct{}
	Boletines map[string]struct{}
}

// NewReadIDSets returns empty (never nil) sets.
func NewReadIDSets() ReadIDSets {
	return ReadIDSets{
		Novedades: make(map[string]struct{}),
		Eventos:   make(map[string]struct{}),
		Boletines: make(map[string]struct{}),
	}
}

// Set returns the id set for a collection, or nil for untracked names.
func (s ReadIDSets) Set(c Collection) map[string]struct{} {
	switch c {
	case CollectionNovedades:
		return s.Novedades
	case CollectionEventos:
		return s.Eventos
	case CollectionBoletines:
		return s.Boletines
	}
	return nil
}

// Contains reports whether the item is marked read in the collection.
func (s ReadIDSets) Contains(c Collection, itemID string) bool {
	set := s.Set(c)
	if set == nil {
		return false
	}
	_, ok := set[itemID]
	return ok
}

// Add inserts an item id into the collection's set.
func (s ReadIDSets) Add(c Collection, itemID string) {
	if set := s.Set(c); set != nil {
		set[itemID] = struct{}{}
	}
}
