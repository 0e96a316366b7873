package services

import (
	"colegio_backend/internal/email"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/unread"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService         AuthService
	ReadStatusService   ReadStatusService
	AnnouncementService AnnouncementService
	EventService        EventService
	ChatService         ChatService
	PickupService       PickupService
	BoletinService      BoletinService
	Mailer              email.Provider
	Hub                 *unread.Hub
}

// Repositories bundles the persistence layer the services are built on.
type Repositories struct {
	Users         repositories.UserRepository
	Announcements repositories.AnnouncementRepository
	Events        repositories.EventRepository
	Conversations repositories.ConversationRepository
	Pickups       repositories.PickupRepository
	Boletines     repositories.BoletinRepository
	ReadMarkers   repositories.ReadMarkerStore
}

func NewServiceContainer(repos Repositories, hub *unread.Hub, mailer email.Provider) *ServiceContainer {
	readStatus := NewReadStatusService(repos.ReadMarkers, hub)

	return &ServiceContainer{
		AuthService:         NewAuthService(repos.Users, readStatus, hub),
		ReadStatusService:   readStatus,
		AnnouncementService: NewAnnouncementService(repos.Announcements, repos.Users, readStatus, hub, mailer),
		EventService:        NewEventService(repos.Events, readStatus, hub),
		ChatService:         NewChatService(repos.Conversations, repos.Users, hub),
		PickupService:       NewPickupService(repos.Pickups, repos.Users, hub, mailer),
		BoletinService:      NewBoletinService(repos.Boletines, repos.Users, readStatus, hub, mailer),
		Mailer:              mailer,
		Hub:                 hub,
	}
}
