package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"colegio_backend/database"
	"colegio_backend/internal/auth"
	"colegio_backend/internal/config"
	"colegio_backend/internal/email"
	"colegio_backend/internal/handlers"
	"colegio_backend/internal/logger"
	"colegio_backend/internal/middleware"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/routes"
	"colegio_backend/internal/services"
	"colegio_backend/internal/unread"
	"colegio_backend/internal/validator"
	"colegio_backend/internal/workers"
	"colegio_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func Run() {
	// .env is optional; real deployments configure through the yaml file
	// or the environment directly.
	_ = godotenv.Load()

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter, hub, readMarkerWorker := SetupRouter(cfg, gormDB)
	defer hub.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	readMarkerWorker.Start(workerCtx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the full application graph and returns the router,
// the badge hub and the maintenance worker so the caller owns their
// lifecycles. Tests call this directly against their own database.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *unread.Hub, *workers.ReadMarkerWorker) {
	repos := initializeRepositories(cfg, gormDB)

	debounce := time.Duration(cfg.Unread.DebounceMS) * time.Millisecond
	sources := services.NewUnreadSources(
		repos.Users, repos.Announcements, repos.Events,
		repos.Conversations, repos.Pickups, repos.Boletines,
	)
	hub := unread.NewHub(repos.ReadMarkers, sources, debounce)

	serviceContainer := services.NewServiceContainer(repos, hub, newMailer(cfg))
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New())

	wsManager := ws.NewWebSocketManager(hub)
	go wsManager.Run()
	wsHandler := ws.NewWebSocketHandler(wsManager, serviceContainer.ReadStatusService, serviceContainer.ChatService)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	worker := workers.NewReadMarkerWorker(gormDB, repos.Users)
	return ginRouter, hub, worker
}

func initializeRepositories(cfg *config.Config, gormDB *gorm.DB) services.Repositories {
	var markerStore repositories.ReadMarkerStore
	switch cfg.ReadStore.Driver {
	case "local":
		store, err := repositories.NewSQLiteReadMarkerStore(cfg.ReadStore.Path)
		if err != nil {
			logger.Fatal("Failed to open local read marker store", "path", cfg.ReadStore.Path, "error", err)
		}
		markerStore = store
	default:
		markerStore = repositories.NewGormReadMarkerStore(gormDB)
	}
	logger.Info("Read marker store initialized", "driver", cfg.ReadStore.Driver)

	return services.Repositories{
		Users:         repositories.NewUserRepository(gormDB),
		Announcements: repositories.NewAnnouncementRepository(gormDB),
		Events:        repositories.NewEventRepository(gormDB),
		Conversations: repositories.NewConversationRepository(gormDB),
		Pickups:       repositories.NewPickupRepository(gormDB),
		Boletines:     repositories.NewBoletinRepository(gormDB),
		ReadMarkers:   markerStore,
	}
}

func newMailer(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP not configured, using mock mailer")
		return &email.MockProvider{}
	}
	return email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
	})
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	var existing models.User
	result := db.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		logger.Info("Admin user already exists, skipping creation", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Name:         "Administrador",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("First admin user created", "email", adminEmail)
	return nil
}
