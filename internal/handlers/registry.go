package handlers

import (
	"colegio_backend/internal/services"
	"colegio_backend/internal/validator"
)

// AppHandlers holds every HTTP handler.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	AnnouncementHandler *AnnouncementHandler
	EventHandler        *EventHandler
	ChatHandler         *ChatHandler
	PickupHandler       *PickupHandler
	BoletinHandler      *BoletinHandler
	ReadStatusHandler   *ReadStatusHandler
}

func NewAppHandlers(container *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)

	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, container.AuthService),
		AnnouncementHandler: NewAnnouncementHandler(base, container.AnnouncementService),
		EventHandler:        NewEventHandler(base, container.EventService),
		ChatHandler:         NewChatHandler(base, container.ChatService),
		PickupHandler:       NewPickupHandler(base, container.PickupService),
		BoletinHandler:      NewBoletinHandler(base, container.BoletinService),
		ReadStatusHandler:   NewReadStatusHandler(base, container.ReadStatusService, container.Hub),
	}
}
