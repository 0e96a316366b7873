package models

import "time"

// Conversation is a staff<->parent message thread.
type Conversation struct {
	BaseModel
	Subject   string `gorm:"not null" json:"subject"`
	CreatedBy string `gorm:"index;not null" json:"created_by"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

type ConversationParticipant struct {
	ConversationID string    `gorm:"primaryKey;type:uuid" json:"conversation_id"`
	UserID         string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`
}

type Message struct {
	BaseModel
	ConversationID string `gorm:"index;not null" json:"conversation_id"`
	SenderID       string `gorm:"index;not null" json:"sender_id"`
	Body           string `gorm:"type:text;not null" json:"body"`
}

// MessageReadReceipt records that a recipient has seen a message.
// Message read state is server-authoritative: the unread counter for the
// mensajes tab is always derived from these rows, never from the
// read-marker store.
type MessageReadReceipt struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string    `gorm:"index:idx_receipt_msg_user,unique;not null" json:"message_id"`
	UserID    string    `gorm:"index:idx_receipt_msg_user,unique;not null" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
