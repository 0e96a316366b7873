package services

import (
	"context"
	"errors"
	"time"

	"colegio_backend/internal/email"
	"colegio_backend/internal/logger"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services/dto"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"
)

type BoletinService interface {
	Publish(req *dto.PublishBoletinRequest, publishedBy string) (*models.Boletin, error)
	ListForParent(ctx context.Context, parentID string, limit, offset int) ([]dto.BoletinResponse, error)
	GetForUser(id, userID string, role models.UserRole) (*models.Boletin, error)
}

type BoletinServiceImpl struct {
	repo       repositories.BoletinRepository
	userRepo   repositories.UserRepository
	readStatus ReadStatusService
	hub        *unread.Hub
	mailer     email.Provider
}

func NewBoletinService(
	repo repositories.BoletinRepository,
	userRepo repositories.UserRepository,
	readStatus ReadStatusService,
	hub *unread.Hub,
	mailer email.Provider,
) BoletinService {
	return &BoletinServiceImpl{
		repo:       repo,
		userRepo:   userRepo,
		readStatus: readStatus,
		hub:        hub,
		mailer:     mailer,
	}
}

func (s *BoletinServiceImpl) Publish(req *dto.PublishBoletinRequest, publishedBy string) (*models.Boletin, error) {
	student, err := s.userRepo.FindStudentByID(req.StudentID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	b := &models.Boletin{
		StudentID:   req.StudentID,
		Period:      req.Period,
		Title:       req.Title,
		FileURL:     req.FileURL,
		PublishedAt: time.Now(),
		PublishedBy: publishedBy,
	}
	if err := s.repo.Create(b); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Only the student's parent sees this boletin.
	s.hub.Notify(student.ParentID)
	go s.notifyParent(student, b)
	return b, nil
}

func (s *BoletinServiceImpl) notifyParent(student *models.Student, b *models.Boletin) {
	parent, err := s.userRepo.FindByID(student.ParentID)
	if err != nil || parent.Email == "" {
		return
	}
	subject := "Nuevo boletín disponible: " + b.Title
	body := "Ya está disponible el boletín \"" + b.Title + "\" de " + student.Name + " (" + b.Period + ")."
	if err := s.mailer.Send([]string{parent.Email}, subject, body); err != nil {
		logger.Warn("boletin mail failed", "boletin_id", b.ID, "error", err)
	}
}

func (s *BoletinServiceImpl) ListForParent(ctx context.Context, parentID string, limit, offset int) ([]dto.BoletinResponse, error) {
	items, err := s.repo.FindByParent(parentID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	rs, err := s.readStatus.ForCollection(ctx, models.CollectionBoletines, parentID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.BoletinResponse, 0, len(items))
	for _, b := range items {
		out = append(out, dto.BoletinResponse{Boletin: b, Read: rs.IsRead(b.ID)})
	}
	return out, nil
}

func (s *BoletinServiceImpl) GetForUser(id, userID string, role models.UserRole) (*models.Boletin, error) {
	b, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrBoletinNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if role == models.UserRoleParent {
		student, err := s.userRepo.FindStudentByID(b.StudentID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if student.ParentID != userID {
			return nil, apperrors.ErrInsufficientPermissions
		}
	}
	return b, nil
}
