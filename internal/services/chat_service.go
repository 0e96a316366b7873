package services

import (
	"errors"

	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services/dto"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"
)

// ChatService covers the mensajes tab. Unlike the marker collections,
// message read state is server-authoritative: receipts, not markers.
type ChatService interface {
	Start(req *dto.StartConversationRequest, creatorID string) (*models.Conversation, error)
	ListForUser(userID string) ([]dto.ConversationResponse, error)
	Messages(conversationID, userID string, limit, offset int) ([]models.Message, error)
	Send(conversationID, senderID string, req *dto.SendMessageRequest) (*models.Message, error)
	// MarkRead records receipts for every unseen message in the
	// conversation and refreshes the reader's badge.
	MarkRead(conversationID, userID string) error
}

type ChatServiceImpl struct {
	repo     repositories.ConversationRepository
	userRepo repositories.UserRepository
	hub      *unread.Hub
}

func NewChatService(repo repositories.ConversationRepository, userRepo repositories.UserRepository, hub *unread.Hub) ChatService {
	return &ChatServiceImpl{repo: repo, userRepo: userRepo, hub: hub}
}

func (s *ChatServiceImpl) Start(req *dto.StartConversationRequest, creatorID string) (*models.Conversation, error) {
	participants := map[string]struct{}{creatorID: {}}
	for _, id := range req.ParticipantIDs {
		if _, err := s.userRepo.FindByID(id); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.NewBadRequestError("participant does not exist: " + id)
			}
			return nil, apperrors.InternalError(err)
		}
		participants[id] = struct{}{}
	}

	ids := make([]string, 0, len(participants))
	for id := range participants {
		ids = append(ids, id)
	}

	conv := &models.Conversation{
		Subject:   req.Subject,
		CreatedBy: creatorID,
	}
	if err := s.repo.Create(conv, ids); err != nil {
		return nil, apperrors.InternalError(err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       creatorID,
		Body:           req.Body,
	}
	if err := s.repo.CreateMessage(msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.hub.Notify(ids...)
	return conv, nil
}

func (s *ChatServiceImpl) ListForUser(userID string) ([]dto.ConversationResponse, error) {
	convs, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ConversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, dto.ConversationResponse{
			Conversation: c.Conversation,
			UnreadCount:  c.UnreadCount,
		})
	}
	return out, nil
}

func (s *ChatServiceImpl) Messages(conversationID, userID string, limit, offset int) ([]models.Message, error) {
	if err := s.requireParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.FindMessages(conversationID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return msgs, nil
}

func (s *ChatServiceImpl) Send(conversationID, senderID string, req *dto.SendMessageRequest) (*models.Message, error) {
	if err := s.requireParticipant(conversationID, senderID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           req.Body,
	}
	if err := s.repo.CreateMessage(msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	conv, err := s.repo.FindByID(conversationID)
	if err == nil {
		ids := make([]string, 0, len(conv.Participants))
		for _, p := range conv.Participants {
			ids = append(ids, p.UserID)
		}
		s.hub.Notify(ids...)
	}
	return msg, nil
}

func (s *ChatServiceImpl) MarkRead(conversationID, userID string) error {
	if err := s.requireParticipant(conversationID, userID); err != nil {
		return err
	}
	if err := s.repo.MarkConversationRead(conversationID, userID); err != nil {
		return apperrors.InternalError(err)
	}
	s.hub.Notify(userID)
	return nil
}

func (s *ChatServiceImpl) requireParticipant(conversationID, userID string) error {
	ok, err := s.repo.IsParticipant(conversationID, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !ok {
		if _, err := s.repo.FindByID(conversationID); errors.Is(err, repositories.ErrConversationNotFound) {
			return apperrors.ErrConversationNotFound
		}
		return apperrors.ErrConversationAccessDenied
	}
	return nil
}
