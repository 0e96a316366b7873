package services

import (
	"context"

	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/unread"
)

// NewUnreadSources builds the five engine feeds directly over the
// repositories, so the badge hub can be constructed before any service
// that notifies it.
func NewUnreadSources(
	userRepo repositories.UserRepository,
	announcementRepo repositories.AnnouncementRepository,
	eventRepo repositories.EventRepository,
	conversationRepo repositories.ConversationRepository,
	pickupRepo repositories.PickupRepository,
	boletinRepo repositories.BoletinRepository,
) unread.Sources {
	return unread.Sources{
		Novedades: func(ctx context.Context, userID string) ([]string, error) {
			students, err := userRepo.FindStudentsByParent(userID)
			if err != nil {
				return nil, err
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

			items, err := announcementRepo.FindVisible(grades, 0, 0)
			if err != nil {
				return nil, err
			}
			return announcementIDs(items), nil
		},

		Eventos: func(ctx context.Context, userID string) ([]string, error) {
			items, err := eventRepo.FindUpcoming(0, 0)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(items))
			for _, e := range items {
				ids = append(ids, e.ID)
			}
			return ids, nil
		},

		Boletines: func(ctx context.Context, userID string) ([]string, error) {
			items, err := boletinRepo.FindByParent(userID, 0, 0)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(items))
			for _, b := range items {
				ids = append(ids, b.ID)
			}
			return ids, nil
		},

		// Mensajes never touches the marker store: receipts are the truth.
		Mensajes: func(ctx context.Context, userID string) (int64, error) {
			return conversationRepo.TotalUnread(userID)
		},

		// Cambios counts by status, not markers. Parents see their own
		// pending requests; staff see the whole queue.
		Cambios: func(ctx context.Context, userID string) (int64, error) {
			user, err := userRepo.FindByID(userID)
			if err != nil {
				return 0, err
			}
			if user.Role == models.UserRoleParent {
				return pickupRepo.CountPendingByRequester(userID)
			}
			return pickupRepo.CountPending()
		},
	}
}

func announcementIDs(items []models.Announcement) []string {
	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	return ids
}
