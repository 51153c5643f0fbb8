package handler

import (
	"net/http"
	"plate-rescue/internal/middleware"
	"plate-rescue/internal/model"
	"plate-rescue/internal/service"

	"github.com/gin-gonic/gin"
)

// ClaimHandler serves the needy side: the donated pool, claims and quota.
type ClaimHandler struct {
	service service.ReservationService
}

func NewClaimHandler(service service.ReservationService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

func (h *ClaimHandler) RegisterRoutes(router *gin.RouterGroup) {
	needy := router.Group("", middleware.RequireRole(model.RoleNeedy))
	{
		needy.GET("donations", h.ListDonated)
		needy.POST("donations/:id/claim", h.Claim)
		needy.POST("claims", h.ClaimBatch)
		needy.GET("quota", h.QuotaStatus)
	}
}

func (h *ClaimHandler) ListDonated(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	donated, err := h.service.ListDonated(c, actor)
	if err != nil {
		handleError(c, err, "ListDonated")
		return
	}

	handleSuccess(c, donated, http.StatusOK)
}

func (h *ClaimHandler) Claim(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req model.ClaimRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	claimed, err := h.service.Claim(c, actor, id, req.Quantity)
	if err != nil {
		handleError(c, err, "Claim")
		return
	}

	handleSuccess(c, claimed, http.StatusCreated)
}

func (h *ClaimHandler) ClaimBatch(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req model.ClaimBatchRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	claimed, err := h.service.ClaimBatch(c, actor, req.Items)
	if err != nil {
		handleError(c, err, "ClaimBatch")
		return
	}

	handleSuccess(c, claimed, http.StatusCreated)
}

func (h *ClaimHandler) QuotaStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	status, err := h.service.QuotaStatus(c, actor)
	if err != nil {
		handleError(c, err, "QuotaStatus")
		return
	}

	handleSuccess(c, status, http.StatusOK)
}
