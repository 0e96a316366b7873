package dto

import (
	"time"

	"colegio_backend/internal/models"
)

// --- Novedades ---

type CreateAnnouncementRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Body        string   `json:"body" validate:"required"`
	Audience    string   `json:"audience" validate:"omitempty,oneof=all grade"`
	TargetGrade string   `json:"target_grade" validate:"omitempty,max=32"`
	Pinned      bool     `json:"pinned"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,url"`
}

// AnnouncementResponse carries the per-user read flag next to the row.
type AnnouncementResponse struct {
	models.Announcement
	Read bool `json:"read"`
}

// --- Eventos ---

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Location    string    `json:"location" validate:"omitempty,max=200"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

type EventResponse struct {
	models.Event
	Read bool `json:"read"`
}

// --- Mensajes ---

type StartConversationRequest struct {
	Subject        string   `json:"subject" validate:"required,max=200"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,uuid4"`
	Body           string   `json:"body" validate:"required"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type ConversationResponse struct {
	models.Conversation
	UnreadCount int64 `json:"unread_count"`
}

// --- Cambios ---

type CreatePickupRequest struct {
	StudentID      string    `json:"student_id" validate:"required,uuid4"`
	PickupPerson   string    `json:"pickup_person" validate:"required,max=120"`
	PickupDocument string    `json:"pickup_document" validate:"omitempty,max=40"`
	PickupDate     time.Time `json:"pickup_date" validate:"required"`
	Reason         string    `json:"reason" validate:"omitempty,max=500"`
}

type ResolvePickupRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// --- Boletines ---

type PublishBoletinRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Period    string `json:"period" validate:"required,max=32"`
	Title     string `json:"title" validate:"required,max=200"`
	FileURL   string `json:"file_url" validate:"required,url"`
}

type BoletinResponse struct {
	models.Boletin
	Read bool `json:"read"`
}
