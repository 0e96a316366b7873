package repositories

import (
	"errors"

	"colegio_backend/internal/models"

	"gorm.io/gorm"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

type AnnouncementRepository interface {
	Create(a *models.Announcement) error
	FindByID(id string) (*models.Announcement, error)
	// FindVisible returns the announcements a parent sees: school-wide
	// ones plus those targeted at any of the given grades. Pinned first,
	// newest first.
	FindVisible(grades []string, limit, offset int) ([]models.Announcement, error)
	Delete(id string) error
}

type AnnouncementRepositoryImpl struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &AnnouncementRepositoryImpl{db: db}
}

func (r *AnnouncementRepositoryImpl) Create(a *models.Announcement) error {
	return r.db.Create(a).Error
}

func (r *AnnouncementRepositoryImpl) FindByID(id string) (*models.Announcement, error) {
	var a models.Announcement
	err := r.db.First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepositoryImpl) FindVisible(grades []string, limit, offset int) ([]models.Announcement, error) {
	var items []models.Announcement
	q := r.db.Where("audience = ?", models.AudienceAll)
	if len(grades) > 0 {
		q = r.db.Where("audience = ? OR (audience = ? AND target_grade IN ?)",
			models.AudienceAll, models.AudienceGrade, grades)
	}
	// limit <= 0 means unbounded (the badge engine wants every id)
	if limit <= 0 {
		limit = -1
	}
	err := q.Order("pinned DESC, published_at DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	return items, err
}

func (r *AnnouncementRepositoryImpl) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Announcement{}).Error
}
