package repositories

import (
	"errors"
	"time"

	"colegio_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
)

// ConversationUnread pairs a conversation with its server-computed
// unread message count for one user.
type ConversationUnread struct {
	Conversation models.Conversation
	UnreadCount  int64
}

type ConversationRepository interface {
	Create(conv *models.Conversation, participantIDs []string) error
	FindByID(id string) (*models.Conversation, error)
	IsParticipant(conversationID, userID string) (bool, error)
	FindByUser(userID string) ([]ConversationUnread, error)

	CreateMessage(msg *models.Message) error
	FindMessages(conversationID string, limit, offset int) ([]models.Message, error)

	// MarkConversationRead inserts receipts for every message in the
	// conversation the user has not read yet (own messages excluded).
	MarkConversationRead(conversationID, userID string) error

	// UnreadCount: unread messages in one conversation for one user.
	UnreadCount(conversationID, userID string) (int64, error)

	// TotalUnread: unread messages across all the user's conversations,
	// in one query. Feeds the mensajes badge.
	TotalUnread(userID string) (int64, error)
}

type ConversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) Create(conv *models.Conversation, participantIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		now := time.Now()
		participants := make([]models.ConversationParticipant, 0, len(participantIDs))
		for _, userID := range participantIDs {
			participants = append(participants, models.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         userID,
				JoinedAt:       now,
			})
		}
		return tx.Create(&participants).Error
	})
}

func (r *ConversationRepositoryImpl) FindByID(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("Participants").First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepositoryImpl) IsParticipant(conversationID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ConversationRepositoryImpl) FindByUser(userID string) ([]ConversationUnread, error) {
	var convs []models.Conversation
	err := r.db.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	result := make([]ConversationUnread, 0, len(convs))
	for _, conv := range convs {
		unread, err := r.UnreadCount(conv.ID, userID)
		if err != nil {
			return nil, err
		}
		result = append(result, ConversationUnread{Conversation: conv, UnreadCount: unread})
	}
	return result, nil
}

func (r *ConversationRepositoryImpl) CreateMessage(msg *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		// Bump the conversation so FindByUser orders by last activity
		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", time.Now()).Error
	})
}

func (r *ConversationRepositoryImpl) FindMessages(conversationID string, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *ConversationRepositoryImpl) MarkConversationRead(conversationID, userID string) error {
	// One insert-select fills in every missing receipt; re-running it is
	// a no-op thanks to the (message_id, user_id) unique index.
	return r.db.Exec(`
		INSERT INTO message_read_receipts (id, message_id, user_id, read_at)
		SELECT gen_random_uuid(), m.id, ?, NOW()
		FROM messages m
		WHERE m.conversation_id = ?
		  AND m.sender_id != ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_read_receipts r
			WHERE r.message_id = m.id AND r.user_id = ?
		  )
	`, userID, conversationID, userID, userID).Error
}

func (r *ConversationRepositoryImpl) UnreadCount(conversationID, userID string) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM messages m
		WHERE m.conversation_id = ?
		  AND m.sender_id != ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_read_receipts r
			WHERE r.message_id = m.id AND r.user_id = ?
		  )
	`, conversationID, userID, userID).Scan(&count).Error
	return count, err
}

func (r *ConversationRepositoryImpl) TotalUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM messages m
		JOIN conversation_participants cp
		  ON cp.conversation_id = m.conversation_id AND cp.user_id = ?
		WHERE m.sender_id != ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_read_receipts r
			WHERE r.message_id = m.id AND r.user_id = ?
		  )
	`, userID, userID, userID).Scan(&count).Error
	return count, err
}
