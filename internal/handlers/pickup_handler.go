package handlers

import (
	"net/http"

	"colegio_backend/internal/middleware"
	"colegio_backend/internal/models"
	"colegio_backend/internal/services"
	"colegio_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PickupHandler struct {
	*BaseHandler
	pickupService services.PickupService
}

func NewPickupHandler(base *BaseHandler, pickupService services.PickupService) *PickupHandler {
	return &PickupHandler{
		BaseHandler:   base,
		pickupService: pickupService,
	}
}

func (h *PickupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cambios := rg.Group("/cambios")
	cambios.Use(middleware.AuthMiddleware())
	{
		cambios.GET("", h.List)
		cambios.GET("/:id", h.Get)
	}

	parents := rg.Group("/cambios")
	parents.Use(middleware.AuthMiddleware())
	parents.Use(middleware.RequireRoles(models.UserRoleParent))
	{
		parents.POST("", h.Create)
	}

	staff := rg.Group("/cambios")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleTeacher))
	{
		staff.PUT("/:id/resolve", h.Resolve)
	}
}

func (h *PickupHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	reqs, err := h.pickupService.ListForUser(userID, middleware.GetRole(c), limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": reqs})
}

func (h *PickupHandler) Get(c *gin.Context) {
	pr, err := h.pickupService.GetByID(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

func (h *PickupHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePickupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	pr, err := h.pickupService.Create(&req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pr)
}

func (h *PickupHandler) Resolve(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ResolvePickupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	pr, err := h.pickupService.Resolve(c.Param("id"), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pr)
}
