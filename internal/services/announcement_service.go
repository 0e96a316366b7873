package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"colegio_backend/internal/email"
	"colegio_backend/internal/logger"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services/dto"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type AnnouncementService interface {
	Create(req *dto.CreateAnnouncementRequest, createdBy string) (*models.Announcement, error)
	// ListForUser returns the announcements visible to the user with the
	// per-user read flag resolved from the marker cache.
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]dto.AnnouncementResponse, error)
	GetByID(id string) (*models.Announcement, error)
	Delete(id string) error
}

type AnnouncementServiceImpl struct {
	repo       repositories.AnnouncementRepository
	userRepo   repositories.UserRepository
	readStatus ReadStatusService
	hub        *unread.Hub
	mailer     email.Provider
}

func NewAnnouncementService(
	repo repositories.AnnouncementRepository,
	userRepo repositories.UserRepository,
	readStatus ReadStatusService,
	hub *unread.Hub,
	mailer email.Provider,
) AnnouncementService {
	return &AnnouncementServiceImpl{
		repo:       repo,
		userRepo:   userRepo,
		readStatus: readStatus,
		hub:        hub,
		mailer:     mailer,
	}
}

func (s *AnnouncementServiceImpl) Create(req *dto.CreateAnnouncementRequest, createdBy string) (*models.Announcement, error) {
	audience := models.AudienceAll
	if req.Audience != "" {
		audience = models.AnnouncementAudience(req.Audience)
	}
	if audience == models.AudienceGrade && req.TargetGrade == "" {
		return nil, apperrors.NewBadRequestError("target_grade is required for grade audience")
	}

	var attachments datatypes.JSON
	if len(req.Attachments) > 0 {
		raw, err := json.Marshal(req.Attachments)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		attachments = raw
	}

	a := &models.Announcement{
		Title:       req.Title,
		Body:        req.Body,
		Audience:    audience,
		TargetGrade: req.TargetGrade,
		Pinned:      req.Pinned,
		Attachments: attachments,
		PublishedAt: time.Now(),
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(a); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// New content bumps everyone's novedades badge.
	s.hub.NotifyAll()
	go s.notifyParents(a)

	return a, nil
}

// notifyParents mails every parent about the new announcement. Failures
// are logged and never block the publish.
func (s *AnnouncementServiceImpl) notifyParents(a *models.Announcement) {
	parents, err := s.userRepo.FindByRole(models.UserRoleParent)
	if err != nil {
		logger.Warn("announcement mail skipped, parent lookup failed", "error", err)
		return
	}

	var to []string
	for _, p := range parents {
		if p.IsActive && p.Email != "" {
			to = append(to, p.Email)
		}
	}
	if len(to) == 0 {
		return
	}

	if err := s.mailer.Send(to, "Nueva novedad: "+a.Title, a.Body); err != nil {
		logger.Warn("announcement mail failed", "announcement_id", a.ID, "error", err)
	}
}

func (s *AnnouncementServiceImpl) ListForUser(ctx context.Context, userID string, limit, offset int) ([]dto.AnnouncementResponse, error) {
	items, err := s.visibleForUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}

	rs, err := s.readStatus.ForCollection(ctx, models.CollectionNovedades, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.AnnouncementResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.AnnouncementResponse{
			Announcement: a,
			Read:         rs.IsRead(a.ID),
		})
	}
	return out, nil
}

func (s *AnnouncementServiceImpl) GetByID(id string) (*models.Announcement, error) {
	a, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAnnouncementNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return a, nil
}

func (s *AnnouncementServiceImpl) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return apperrors.InternalError(err)
	}
	// Deleting content can shrink badges.
	s.hub.NotifyAll()
	return nil
}

func (s *AnnouncementServiceImpl) visibleForUser(userID string, limit, offset int) ([]models.Announcement, error) {
	grades, err := s.gradesForUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindVisible(grades, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return items, nil
}

func (s *AnnouncementServiceImpl) gradesForUser(userID string) ([]string, error) {
	students, err := s.userRepo.FindStudentsByParent(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	seen := make(map[string]struct{}, len(students))
	var grades []string
	for _, st := range students {
		if _, ok := seen[st.Grade]; ok {
			continue
		}
		seen[st.Grade] = struct{}{}
		grades = append(grades, st.Grade)
	}
	return grades, nil
}
