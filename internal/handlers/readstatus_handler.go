package handlers

import (
	"errors"
	"net/http"

	"colegio_backend/internal/middleware"
	"colegio_backend/internal/models"
	"colegio_backend/internal/repositories"
	"colegio_backend/internal/services"
	"colegio_backend/internal/unread"
	"colegio_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ReadStatusHandler exposes the marker store and the badge record over
// HTTP. The unread counts here are the same record the WebSocket pushes;
// polling clients and push clients always agree.
type ReadStatusHandler struct {
	*BaseHandler
	readStatusService services.ReadStatusService
	hub               *unread.Hub
}

func NewReadStatusHandler(base *BaseHandler, readStatusService services.ReadStatusService, hub *unread.Hub) *ReadStatusHandler {
	return &ReadStatusHandler{
		BaseHandler:       base,
		readStatusService: readStatusService,
		hub:               hub,
	}
}

func (h *ReadStatusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rs := rg.Group("/readstatus")
	rs.Use(middleware.AuthMiddleware())
	{
		rs.GET("/unread-counts", h.UnreadCounts)
		rs.GET("/collections/:collection", h.ReadIDs)
		rs.PUT("/:collection/:id/read", h.MarkAsRead)
		rs.DELETE("", h.ClearAll)
	}
}

func (h *ReadStatusHandler) UnreadCounts(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.hub.State(userID).Get())
}

func (h *ReadStatusHandler) ReadIDs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	collection := models.Collection(c.Param("collection"))
	if !collection.Valid() {
		h.HandleServiceError(c, apperrors.ErrUnknownCollection)
		return
	}

	sets := h.readStatusService.GetAllReadIDs(c.Request.Context(), userID)
	ids := make([]string, 0)
	for id := range sets.Set(collection) {
		ids = append(ids, id)
	}

	c.JSON(http.StatusOK, gin.H{"collection": collection, "read_ids": ids})
}

// MarkAsRead is idempotent and never fails on storage trouble; the
// response only distinguishes a bad collection name.
func (h *ReadStatusHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	collection := models.Collection(c.Param("collection"))
	err := h.readStatusService.MarkAsRead(c.Request.Context(), collection, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUnknownCollection) {
			h.HandleServiceError(c, apperrors.ErrUnknownCollection)
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// ClearAll wipes every marker for the user, returning all marker-tracked
// items to unread.
func (h *ReadStatusHandler) ClearAll(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.readStatusService.ClearAll(c.Request.Context(), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Read markers cleared"})
}
