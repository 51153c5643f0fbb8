package handler

import (
	"net/http"
	"plate-rescue/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts every API route under /api/v1 behind bearer auth, plus
// the unauthenticated /ping and /metrics endpoints.
func NewRouter(jwtSecret string, gatherer prometheus.Gatherer, plates *PlateHandler, reservations *ReservationHandler, claims *ClaimHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1", middleware.Auth(jwtSecret))
	plates.RegisterRoutes(api)
	reservations.RegisterRoutes(api)
	claims.RegisterRoutes(api)

	return r
}
