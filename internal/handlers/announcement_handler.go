package handlers

import (
	"net/http"

	"colegio_backend/internal/middleware"
	"colegio_backend/internal/models"
	"colegio_backend/internal/services"
	"colegio_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AnnouncementHandler struct {
	*BaseHandler
	announcementService services.AnnouncementService
}

func NewAnnouncementHandler(base *BaseHandler, announcementService services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{
		BaseHandler:         base,
		announcementService: announcementService,
	}
}

func (h *AnnouncementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	novedades := rg.Group("/novedades")
	novedades.Use(middleware.AuthMiddleware())
	{
		novedades.GET("", h.List)
		novedades.GET("/:id", h.Get)
	}

	staff := rg.Group("/novedades")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleTeacher))
	{
		staff.POST("", h.Create)
		staff.DELETE("/:id", h.Delete)
	}
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	items, err := h.announcementService.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	a, err := h.announcementService.GetByID(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAnnouncementRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	a, err := h.announcementService.Create(&req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.announcementService.Delete(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
