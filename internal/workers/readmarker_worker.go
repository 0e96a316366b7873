package workers

import (
	"context"
	"time"

	"colegio_backend/internal/logger"
	"colegio_backend/internal/repositories"

	"gorm.io/gorm"
)

// ReadMarkerWorker keeps the marker table from growing without bound:
// markers whose content row is gone serve no query anymore.
type ReadMarkerWorker struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
}

func NewReadMarkerWorker(db *gorm.DB, userRepo repositories.UserRepository) *ReadMarkerWorker {
	return &ReadMarkerWorker{db: db, userRepo: userRepo}
}

func (w *ReadMarkerWorker) Start(ctx context.Context) {
	go w.pruneOrphanedMarkers(ctx)
	go w.cleanExpiredTokens(ctx)
}

// pruneOrphanedMarkers deletes markers referencing deleted content.
// Orphans are harmless for correctness (the id sets just carry dead
// entries) so a daily sweep is enough.
func (w *ReadMarkerWorker) pruneOrphanedMarkers(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("read marker worker stopped")
			return
		case <-ticker.C:
			result := w.db.Exec(`
				DELETE FROM read_markers
				WHERE (collection = 'novedades' AND item_id NOT IN (SELECT id FROM announcements))
				   OR (collection = 'eventos'   AND item_id NOT IN (SELECT id FROM events))
				   OR (collection = 'boletines' AND item_id NOT IN (SELECT id FROM boletins))
			`)
			if result.Error != nil {
				logger.Error("orphaned marker prune failed", "error", result.Error)
			} else if result.RowsAffected > 0 {
				logger.Info("pruned orphaned read markers", "count", result.RowsAffected)
			}
		}
	}
}

func (w *ReadMarkerWorker) cleanExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.userRepo.CleanExpiredRefreshTokens(); err != nil {
				logger.Error("expired token cleanup failed", "error", err)
			}
		}
	}
}
