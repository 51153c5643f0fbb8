package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"plate-rescue/internal/handler"
	"plate-rescue/internal/middleware"
	"plate-rescue/internal/model"
	"plate-rescue/internal/service/mocks"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

var (
	InvalidJSON = `{"invalid": json}`

	customer   = model.Actor{UserID: 11, Role: model.RoleCustomer}
	donor      = model.Actor{UserID: 12, Role: model.RoleDonor}
	needy      = model.Actor{UserID: 13, Role: model.RoleNeedy}
	restaurant = model.Actor{UserID: 14, Role: model.RoleRestaurant}
)

func setupTestRouter(plates *mocks.PlateServiceMock, reservations *mocks.ReservationServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return handler.NewRouter(
		testSecret,
		prometheus.NewRegistry(),
		handler.NewPlateHandler(plates),
		handler.NewReservationHandler(reservations),
		handler.NewClaimHandler(reservations),
	)
}

// create HTTP request with JSON body, authenticated as actor
func createJSONHTTPRequest(t *testing.T, method, url string, actor *model.Actor, data interface{}) *http.Request {
	t.Helper()

	var body []byte
	switch v := data.(type) {
	case nil:
	case string:
		body = []byte(v)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if actor != nil {
		token, err := middleware.IssueToken(testSecret, actor.UserID, actor.Role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
