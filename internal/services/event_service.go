package services

import (
	"context"
	"errors"

	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services/dto"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"
)

type EventService interface {
	Create(req *dto.CreateEventRequest, createdBy string) (*models.Event, error)
	ListUpcoming(ctx context.Context, userID string, limit, offset int) ([]dto.EventResponse, error)
	GetByID(id string) (*models.Event, error)
	Delete(id string) error
}

type EventServiceImpl struct {
	repo       repositories.EventRepository
	readStatus ReadStatusService
	hub        *unread.Hub
}

func NewEventService(repo repositories.EventRepository, readStatus ReadStatusService, hub *unread.Hub) EventService {
	return &EventServiceImpl{repo: repo, readStatus: readStatus, hub: hub}
}

func (s *EventServiceImpl) Create(req *dto.CreateEventRequest, createdBy string) (*models.Event, error) {
	e := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(e); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.hub.NotifyAll()
	return e, nil
}

func (s *EventServiceImpl) ListUpcoming(ctx context.Context, userID string, limit, offset int) ([]dto.EventResponse, error) {
	items, err := s.repo.FindUpcoming(limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	rs, err := s.readStatus.ForCollection(ctx, models.CollectionEventos, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.EventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, dto.EventResponse{Event: e, Read: rs.IsRead(e.ID)})
	}
	return out, nil
}

func (s *EventServiceImpl) GetByID(id string) (*models.Event, error) {
	e, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return e, nil
}

func (s *EventServiceImpl) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return apperrors.InternalError(err)
	}
	s.hub.NotifyAll()
	return nil
}
