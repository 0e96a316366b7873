package repositories

import (
	"errors"
	"time"

	"colegio_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPickupNotFound = errors.New("pickup request not found")

type PickupRepository interface {
	Create(req *models.PickupRequest) error
	FindByID(id string) (*models.PickupRequest, error)
	FindByRequester(userID string, limit, offset int) ([]models.PickupRequest, error)
	FindPending(limit, offset int) ([]models.PickupRequest, error)
	UpdateStatus(id string, status models.PickupStatus, resolvedBy string) error

	// CountPendingByRequester feeds the cambios badge for parents.
	CountPendingByRequester(userID string) (int64, error)
	// CountPending feeds the cambios badge for staff.
	CountPending() (int64, error)
}

type PickupRepositoryImpl struct {
	db *gorm.DB
}

func NewPickupRepository(db *gorm.DB) PickupRepository {
	return &PickupRepositoryImpl{db: db}
}

func (r *PickupRepositoryImpl) Create(req *models.PickupRequest) error {
	return r.db.Create(req).Error
}

func (r *PickupRepositoryImpl) FindByID(id string) (*models.PickupRequest, error) {
	var req models.PickupRequest
	err := r.db.First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPickupNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *PickupRepositoryImpl) FindByRequester(userID string, limit, offset int) ([]models.PickupRequest, error) {
	var reqs []models.PickupRequest
	err := r.db.Where("requested_by = ?", userID).
		Order("pickup_date DESC").
		Limit(limit).Offset(offset).
		Find(&reqs).Error
	return reqs, err
}

func (r *PickupRepositoryImpl) FindPending(limit, offset int) ([]models.PickupRequest, error) {
	var reqs []models.PickupRequest
	err := r.db.Where("status = ?", models.PickupStatusPending).
		Order("pickup_date ASC").
		Limit(limit).Offset(offset).
		Find(&reqs).Error
	return reqs, err
}

func (r *PickupRepositoryImpl) UpdateStatus(id string, status models.PickupStatus, resolvedBy string) error {
	now := time.Now()
	result := r.db.Model(&models.PickupRequest{}).
		Where("id = ? AND status = ?", id, models.PickupStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPickupNotFound
	}
	return nil
}

func (r *PickupRepositoryImpl) CountPendingByRequester(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PickupRequest{}).
		Where("requested_by = ? AND status = ?", userID, models.PickupStatusPending).
		Count(&count).Error
	return count, err
}

func (r *PickupRepositoryImpl) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.PickupRequest{}).
		Where("status = ?", models.PickupStatusPending).
		Count(&count).Error
	return count, err
}
