package handlers

import (
	"net/http"

	"colegio_backend/internal/middleware"
	"colegio_backend/internal/services"
	"colegio_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conversations := rg.Group("/conversations")
	conversations.Use(middleware.AuthMiddleware())
	{
		conversations.POST("", h.Start)
		conversations.GET("", h.List)
		conversations.GET("/:id/messages", h.Messages)
		conversations.POST("/:id/messages", h.Send)
		conversations.POST("/:id/read", h.MarkRead)
	}
}

func (h *ChatHandler) Start(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.StartConversationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	conv, err := h.chatService.Start(&req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	convs, err := h.chatService.ListForUser(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": convs})
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	msgs, err := h.chatService.Messages(c.Param("id"), userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": msgs})
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	msg, err := h.chatService.Send(c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead records receipts for everything unseen in the conversation.
// Idempotent: repeating it changes nothing.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.MarkRead(c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked as read"})
}
