package handlers

import (
	"net/http"

	"colegio_backend/internal/middleware"
	"colegio_backend/internal/models"
	"colegio_backend/internal/services"
	"colegio_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BoletinHandler struct {
	*BaseHandler
	boletinService services.BoletinService
}

func NewBoletinHandler(base *BaseHandler, boletinService services.BoletinService) *BoletinHandler {
	return &BoletinHandler{
		BaseHandler:    base,
		boletinService: boletinService,
	}
}

func (h *BoletinHandler) RegisterRoutes(rg *gin.RouterGroup) {
	boletines := rg.Group("/boletines")
	boletines.Use(middleware.AuthMiddleware())
	{
		boletines.GET("", h.List)
		boletines.GET("/:id", h.Get)
	}

	staff := rg.Group("/boletines")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleTeacher))
	{
		staff.POST("", h.Publish)
	}
}

func (h *BoletinHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	items, err := h.boletinService.ListForParent(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *BoletinHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	b, err := h.boletinService.GetForUser(c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BoletinHandler) Publish(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PublishBoletinRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	b, err := h.boletinService.Publish(&req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}
