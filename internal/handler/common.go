package handler

import (
	"errors"
	"net/http"
	"plate-rescue/internal/middleware"
	"plate-rescue/internal/model"
	apperrors "plate-rescue/pkg/app_errors"
	"plate-rescue/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

type idUri struct {
	ID int `uri:"id" binding:"required,min=1"`
}

// bindID reads the :id path parameter.
func bindID(c *gin.Context) (int, bool) {
	var uri idUri
	if err := BindUri(c, &uri); err != nil {
		return 0, false
	}
	return uri.ID, true
}

// actorOrAbort fetches the authenticated actor; routes are always behind middleware.Auth.
func actorOrAbort(c *gin.Context) (model.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
		})
		return model.Actor{}, false
	}
	return actor, true
}

var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{apperrors.ErrPlateNotFound, http.StatusNotFound, "Plate not found"},
	{apperrors.ErrReservationNotFound, http.StatusNotFound, "Reservation not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{apperrors.ErrInsufficientStock, http.StatusConflict, "Insufficient stock"},
	{apperrors.ErrWrongState, http.StatusConflict, "Reservation is not in a valid status for this operation"},
	{apperrors.ErrOutsideWindow, http.StatusUnprocessableEntity, "Outside pickup window"},
	{apperrors.ErrQuotaExceeded, http.StatusTooManyRequests, "Daily free plate quota exceeded"},
	{apperrors.ErrNotOwner, http.StatusForbidden, "Reservation belongs to another user"},
	{apperrors.ErrRoleNotAllowed, http.StatusForbidden, "Role not allowed"},
	{apperrors.ErrInvalidQuantity, http.StatusBadRequest, "Quantity must be positive"},
	{apperrors.ErrInvalidPickupCode, http.StatusBadRequest, "Invalid pickup code"},
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
}

// handleError maps engine errors to HTTP responses. Domain errors are logged
// at Warn, anything else at Error with a generic message.
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			log.Warn(r.message)
			c.JSON(r.status, gin.H{
				"error": r.message,
			})
			return
		}
	}

	log.Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

func handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
