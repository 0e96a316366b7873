package services

import (
	"errors"

	"colegio_backend/internal/email"
	"colegio_backend/internal/logger"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services/dto"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"
)

// PickupService handles the cambios tab. Its badge is not marker based:
// a request counts as unread while its status is pending, and resolving
// it clears it for everyone watching.
type PickupService interface {
	Create(req *dto.CreatePickupRequest, requestedBy string) (*models.PickupRequest, error)
	ListForUser(userID string, role models.UserRole, limit, offset int) ([]models.PickupRequest, error)
	GetByID(id string) (*models.PickupRequest, error)
	Resolve(id string, req *dto.ResolvePickupRequest, resolvedBy string) (*models.PickupRequest, error)
}

type PickupServiceImpl struct {
	repo     repositories.PickupRepository
	userRepo repositories.UserRepository
	hub      *unread.Hub
	mailer   email.Provider
}

func NewPickupService(
	repo repositories.PickupRepository,
	userRepo repositories.UserRepository,
	hub *unread.Hub,
	mailer email.Provider,
) PickupService {
	return &PickupServiceImpl{repo: repo, userRepo: userRepo, hub: hub, mailer: mailer}
}

func (s *PickupServiceImpl) Create(req *dto.CreatePickupRequest, requestedBy string) (*models.PickupRequest, error) {
	student, err := s.userRepo.FindStudentByID(req.StudentID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if student.ParentID != requestedBy {
		return nil, apperrors.ErrStudentNotOwned
	}

	pr := &models.PickupRequest{
		StudentID:      req.StudentID,
		RequestedBy:    requestedBy,
		PickupPerson:   req.PickupPerson,
		PickupDocument: req.PickupDocument,
		PickupDate:     req.PickupDate,
		Reason:         req.Reason,
		Status:         models.PickupStatusPending,
	}
	if err := s.repo.Create(pr); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// A new pending request bumps the requester's badge and the staff
	// queue badge.
	s.hub.NotifyAll()
	return pr, nil
}

func (s *PickupServiceImpl) ListForUser(userID string, role models.UserRole, limit, offset int) ([]models.PickupRequest, error) {
	var (
		reqs []models.PickupRequest
		err  error
	)
	if role == models.UserRoleParent {
		reqs, err = s.repo.FindByRequester(userID, limit, offset)
	} else {
		reqs, err = s.repo.FindPending(limit, offset)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return reqs, nil
}

func (s *PickupServiceImpl) GetByID(id string) (*models.PickupRequest, error) {
	pr, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrPickupNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return pr, nil
}

func (s *PickupServiceImpl) Resolve(id string, req *dto.ResolvePickupRequest, resolvedBy string) (*models.PickupRequest, error) {
	status := models.PickupStatus(req.Status)

	if err := s.repo.UpdateStatus(id, status, resolvedBy); err != nil {
		if errors.Is(err, repositories.ErrPickupNotFound) {
			// Either the id is wrong or the request was already resolved;
			// the guarded update cannot tell them apart without a second read.
			if _, findErr := s.repo.FindByID(id); findErr == nil {
				return nil, apperrors.ErrPickupNotPending
			}
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	pr, err := s.repo.FindByID(id)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.hub.NotifyAll()
	go s.notifyRequester(pr)
	return pr, nil
}

func (s *PickupServiceImpl) notifyRequester(pr *models.PickupRequest) {
	requester, err := s.userRepo.FindByID(pr.RequestedBy)
	if err != nil || requester.Email == "" {
		return
	}

	subject := "Solicitud de retiro " + string(pr.Status)
	body := "La solicitud de retiro de " + pr.PickupPerson + " fue " + string(pr.Status) + "."
	if err := s.mailer.Send([]string{requester.Email}, subject, body); err != nil {
		logger.Warn("pickup resolution mail failed", "pickup_id", pr.ID, "error", err)
	}
}
