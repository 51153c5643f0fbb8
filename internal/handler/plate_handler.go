package handler

import (
	"net/http"
	"plate-rescue/internal/middleware"
	"plate-rescue/internal/model"
	"plate-rescue/internal/service"

	"github.com/gin-gonic/gin"
)

type PlateHandler struct {
	service service.PlateService
}

func NewPlateHandler(service service.PlateService) *PlateHandler {
	return &PlateHandler{service: service}
}

// RegisterRoutes mounts plate routes on an authenticated group.
func (h *PlateHandler) RegisterRoutes(router *gin.RouterGroup) {
	restaurant := middleware.RequireRole(model.RoleRestaurant)

	router.GET("plates", h.ListAvailable)
	router.GET("plates/mine", restaurant, h.ListMine)
	router.GET("plates/:id", h.GetPlate)
	router.POST("plates", restaurant, h.CreatePlate)
	router.PUT("plates/:id/deactivate", restaurant, h.Deactivate)
}

func (h *PlateHandler) ListAvailable(c *gin.Context) {
	plates, err := h.service.ListAvailable(c)
	if err != nil {
		handleError(c, err, "ListAvailable")
		return
	}

	handleSuccess(c, plates, http.StatusOK)
}

func (h *PlateHandler) GetPlate(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	plate, err := h.service.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetPlate")
		return
	}

	handleSuccess(c, plate, http.StatusOK)
}

func (h *PlateHandler) ListMine(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	plates, err := h.service.ListMine(c, actor)
	if err != nil {
		handleError(c, err, "ListMine")
		return
	}

	handleSuccess(c, plates, http.StatusOK)
}

func (h *PlateHandler) CreatePlate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req model.CreatePlateRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	plate, err := h.service.Create(c, actor, req)
	if err != nil {
		handleError(c, err, "CreatePlate")
		return
	}

	handleSuccess(c, plate, http.StatusCreated)
}

func (h *PlateHandler) Deactivate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c, actor, id); err != nil {
		handleError(c, err, "Deactivate")
		return
	}

	handleSuccess(c, nil, http.StatusNoContent)
}
