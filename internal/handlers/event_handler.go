package handlers

import (
	"net/http"

	"colegio_backend/internal/middleware"
	"colegio_backend/internal/models"
	"colegio_backend/internal/services"
	"colegio_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	*BaseHandler
	eventService services.EventService
}

func NewEventHandler(base *BaseHandler, eventService services.EventService) *EventHandler {
	return &EventHandler{
		BaseHandler:  base,
		eventService: eventService,
	}
}

func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	eventos := rg.Group("/eventos")
	eventos.Use(middleware.AuthMiddleware())
	{
		eventos.GET("", h.List)
		eventos.GET("/:id", h.Get)
	}

	staff := rg.Group("/eventos")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleTeacher))
	{
		staff.POST("", h.Create)
		staff.DELETE("/:id", h.Delete)
	}
}

func (h *EventHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	items, err := h.eventService.ListUpcoming(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *EventHandler) Get(c *gin.Context) {
	e, err := h.eventService.GetByID(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	e, err := h.eventService.Create(&req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.Delete(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
