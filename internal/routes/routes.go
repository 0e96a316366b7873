package routes

import (
	"net/http"

	"colegio_backend/internal/handlers"
	"colegio_backend/internal/logger"
	"colegio_backend/internal/middleware"
	"colegio_backend/pkg/contextkeys"
	"colegio_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes wires every HTTP and WebSocket route.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
) {
	ginRouter.GET("/healthz", healthCheck)

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.AnnouncementHandler.RegisterRoutes(api)
		appHandlers.EventHandler.RegisterRoutes(api)
		appHandlers.ChatHandler.RegisterRoutes(api)
		appHandlers.PickupHandler.RegisterRoutes(api)
		appHandlers.BoletinHandler.RegisterRoutes(api)
		appHandlers.ReadStatusHandler.RegisterRoutes(api)
	}

	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}

// healthCheck pings the database handle the DBMiddleware put into the
// context.
func healthCheck(c *gin.Context) {
	val, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "no database handle"})
		return
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "invalid database handle"})
		return
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
