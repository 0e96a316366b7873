package ws

import (
	"net/http"

	"colegio_backend/internal/logger"
	"colegio_backend/internal/middleware"
	"colegio_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the mobile app origins once they are fixed
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	Manager           *WebSocketManager
	ReadStatusService services.ReadStatusService
	ChatService       services.ChatService
}

func NewWebSocketHandler(manager *WebSocketManager, readStatus services.ReadStatusService, chat services.ChatService) *WebSocketHandler {
	return &WebSocketHandler{
		Manager:           manager,
		ReadStatusService: readStatus,
		ChatService:       chat,
	}
}

// ServeWS upgrades an authenticated request to a websocket and wires the
// connection into the badge push loop.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := &Client{
		UserID:            userID,
		Conn:              conn,
		Send:              make(chan any, 256),
		Ctx:               c.Request.Context(),
		Manager:           h.Manager,
		ReadStatusService: h.ReadStatusService,
		ChatService:       h.ChatService,
	}

	h.Manager.register <- client

	go client.readPump()
	go client.writePump()
}
