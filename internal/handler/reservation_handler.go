package handler

import (
	"net/http"
	"plate-rescue/internal/middleware"
	"plate-rescue/internal/model"
	"plate-rescue/internal/service"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service service.ReservationService
}

func NewReservationHandler(service service.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	buyer := middleware.RequireRole(model.RoleCustomer, model.RoleDonor)

	router.POST("reservations", buyer, h.CreateReservation)
	router.GET("reservations", h.ListMine)
	router.GET("reservations/:id", h.GetReservation)
	router.PUT("reservations/:id/confirm", buyer, h.ConfirmReservation)
	router.PUT("reservations/:id/cancel", buyer, h.CancelReservation)
	router.PUT("reservations/:id/pickup", middleware.RequireRole(model.RoleRestaurant), h.PickUp)
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req model.CreateReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Reserve(c, actor, req)
	if err != nil {
		handleError(c, err, "CreateReservation")
		return
	}

	handleSuccess(c, created, http.StatusCreated)
}

func (h *ReservationHandler) ListMine(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	reservations, err := h.service.ListMine(c, actor)
	if err != nil {
		handleError(c, err, "ListReservations")
		return
	}

	handleSuccess(c, reservations, http.StatusOK)
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	reservation, err := h.service.GetByID(c, actor, id)
	if err != nil {
		handleError(c, err, "GetReservation")
		return
	}

	handleSuccess(c, reservation, http.StatusOK)
}

func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	result, err := h.service.Confirm(c, actor, id)
	if err != nil {
		handleError(c, err, "ConfirmReservation")
		return
	}

	handleSuccess(c, result, http.StatusOK)
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	cancelled, err := h.service.Cancel(c, actor, id)
	if err != nil {
		handleError(c, err, "CancelReservation")
		return
	}

	handleSuccess(c, cancelled, http.StatusOK)
}

func (h *ReservationHandler) PickUp(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req model.PickUpRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	pickedUp, err := h.service.PickUp(c, actor, id, req.PickupCode)
	if err != nil {
		handleError(c, err, "PickUp")
		return
	}

	handleSuccess(c, pickedUp, http.StatusOK)
}
