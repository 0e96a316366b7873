package repositories

import (
	"errors"

	"colegio_backend/internal/models"

	"gorm.io/gorm"
)

var ErrBoletinNotFound = errors.New("boletin not found")

type BoletinRepository interface {
	Create(b *models.Boletin) error
	FindByID(id string) (*models.Boletin, error)
	// FindByParent returns report cards for every student of the parent,
	// newest first.
	FindByParent(parentID string, limit, offset int) ([]models.Boletin, error)
	FindByStudent(studentID string) ([]models.Boletin, error)
}

type BoletinRepositoryImpl struct {
	db *gorm.DB
}

func NewBoletinRepository(db *gorm.DB) BoletinRepository {
	return &BoletinRepositoryImpl{db: db}
}

func (r *BoletinRepositoryImpl) Create(b *models.Boletin) error {
	return r.db.Create(b).Error
}

func (r *BoletinRepositoryImpl) FindByID(id string) (*models.Boletin, error) {
	var b models.Boletin
	err := r.db.First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoletinNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BoletinRepositoryImpl) FindByParent(parentID string, limit, offset int) ([]models.Boletin, error) {
	var boletines []models.Boletin
	if limit <= 0 {
		limit = -1
	}
	err := r.db.
		Joins("JOIN students s ON s.id = boletins.student_id").
		Where("s.parent_id = ?", parentID).
		Order("boletins.published_at DESC").
		Limit(limit).Offset(offset).
		Find(&boletines).Error
	return boletines, err
}

func (r *BoletinRepositoryImpl) FindByStudent(studentID string) ([]models.Boletin, error) {
	var boletines []models.Boletin
	err := r.db.Where("student_id = ?", studentID).
		Order("published_at DESC").
		Find(&boletines).Error
	return boletines, err
}
