package repositories

import (
	"errors"
	"time"

	"colegio_backend/internal/models"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(e *models.Event) error
	FindByID(id string) (*models.Event, error)
	// FindUpcoming returns events that have not ended yet, soonest first.
	FindUpcoming(limit, offset int) ([]models.Event, error)
	Delete(id string) error
}

type EventRepositoryImpl struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &EventRepositoryImpl{db: db}
}

func (r *EventRepositoryImpl) Create(e *models.Event) error {
	return r.db.Create(e).Error
}

func (r *EventRepositoryImpl) FindByID(id string) (*models.Event, error) {
	var e models.Event
	err := r.db.First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EventRepositoryImpl) FindUpcoming(limit, offset int) ([]models.Event, error) {
	var events []models.Event
	if limit <= 0 {
		limit = -1
	}
	err := r.db.Where("ends_at >= ?", time.Now()).
		Order("starts_at ASC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *EventRepositoryImpl) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Event{}).Error
}
