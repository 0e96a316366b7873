package ws

import (
	"context"
	"encoding/json"

	"colegio_backend/internal/logger"
	"colegio_backend/internal/models"
	"colegio_backend/internal/services"
	"colegio_backend/internal/unread"

	"github.com/gorilla/websocket"
)

type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// OutgoingWSMessage wraps every server push with a type tag.
type OutgoingWSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan any
	Ctx    context.Context

	Manager           *WebSocketManager
	ReadStatusService services.ReadStatusService
	ChatService       services.ChatService

	unsubscribe func()
}

// startBadgePush forwards every committed badge record to this
// connection until the subscription is torn down.
func (c *Client) startBadgePush(counts <-chan unread.Counts, unsubscribe func()) {
	c.unsubscribe = unsubscribe

	go func() {
		for cnt := range counts {
			select {
			case c.Send <- OutgoingWSMessage{Type: "unread_counts", Data: cnt}:
			default:
				// Slow socket; the next publish carries fresher counts.
			}
		}
	}()
}

func (c *Client) readPump() {
	defer func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Warn("ws message parse failed", "user_id", c.UserID, "error", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	for msg := range c.Send {
		if err := c.Conn.WriteJSON(msg); err != nil {
			logger.Warn("ws write failed", "user_id", c.UserID, "error", err)
			break
		}
	}
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {

	case "mark_as_read":
		var payload struct {
			Collection string `json:"collection"`
			ItemID     string `json:"item_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			logger.Warn("invalid mark_as_read payload", "user_id", c.UserID, "error", err)
			return
		}
		err := c.ReadStatusService.MarkAsRead(c.Ctx, models.Collection(payload.Collection), payload.ItemID, c.UserID)
		if err != nil {
			logger.Warn("ws mark_as_read failed", "user_id", c.UserID, "error", err)
		}

	case "mark_conversation_read":
		var payload struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			logger.Warn("invalid mark_conversation_read payload", "user_id", c.UserID, "error", err)
			return
		}
		if err := c.ChatService.MarkRead(payload.ConversationID, c.UserID); err != nil {
			logger.Warn("ws mark_conversation_read failed", "user_id", c.UserID, "error", err)
		}

	case "refresh":
		// Client-requested recompute, e.g. after the app returns to the
		// foreground.
		c.Manager.hub.Notify(c.UserID)

	default:
		logger.Warn("unhandled ws action", "user_id", c.UserID, "action", msg.Action)
	}
}
