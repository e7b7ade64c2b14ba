package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideboard-api/controllers"
	"rideboard-api/repositories"
	"rideboard-api/routes"
	"rideboard-api/services"
)

type noopMailer struct{}

func (noopMailer) SendMatchDigest(string, string, string, string, string, []services.ScoredTrip) error {
	return nil
}

func newTestServer() (*gin.Engine, *repositories.MemoryTripRepository) {
	gin.SetMode(gin.TestMode)

	repo := repositories.NewMemoryTripRepository()
	trips := services.NewTripService(repo)
	matcher := services.NewMatchService(repo)
	dispatcher := services.NewNotificationDispatcher(repo, matcher, noopMailer{})

	router := gin.New()
	routes.SetupRoutes(router, controllers.NewTripController(trips, matcher, dispatcher))
	return router, repo
}

func postTrip(t *testing.T, router *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tripBody(contact string) map[string]interface{} {
	return map[string]interface{}{
		"name":        "Alex",
		"contact":     contact,
		"origin":      "Amherst",
		"destination": "Boston",
		"date":        "2099-01-10",
		"time_from":   "08:00",
		"time_to":     "10:00",
		"price_min":   20,
		"price_max":   40,
	}
}

func TestPostTrip_CreatedWithMatches(t *testing.T) {
	router, _ := newTestServer()

	w := postTrip(t, router, tripBody("+15551234567"))
	require.Equal(t, http.StatusCreated, w.Code)

	other := tripBody("+15557654321")
	other["time_from"] = "09:00"
	other["time_to"] = "11:00"
	w = postTrip(t, router, other)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Trip struct {
				ID          string `json:"id"`
				RouteKey    string `json:"route_key"`
				ContactType string `json:"contact_type"`
			} `json:"trip"`
			Matches []struct {
				Contact string `json:"contact"`
			} `json:"matches"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "amherst→boston", resp.Data.Trip.RouteKey)
	assert.Equal(t, "phone", resp.Data.Trip.ContactType)
	require.Len(t, resp.Data.Matches, 1)
	assert.Equal(t, "+15551234567", resp.Data.Matches[0].Contact)
}

func TestPostTrip_ValidationAndDuplicate(t *testing.T) {
	router, _ := newTestServer()

	bad := tripBody("+15551234567")
	bad["time_from"] = "10:00"
	bad["time_to"] = "08:00"
	w := postTrip(t, router, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postTrip(t, router, tripBody("+15551234567"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postTrip(t, router, tripBody("+15551234567"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSearchTrips(t *testing.T) {
	router, _ := newTestServer()
	require.Equal(t, http.StatusCreated, postTrip(t, router, tripBody("+15551234567")).Code)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/trips/search?origin=Amherst&destination=Boston&date=2099-01-10&time_from=09:00&time_to=09:30", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int `json:"count"`
		Matches []struct {
			Contact      string  `json:"contact"`
			Similarity   float64 `json:"similarity"`
			TimeDistance float64 `json:"time_distance_minutes"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 2.0, resp.Matches[0].Similarity)

	// Bad time parameter is a validation error.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/trips/search?time_from=9am&time_to=10:00", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMyTripsAndDelete(t *testing.T) {
	router, _ := newTestServer()
	w := postTrip(t, router, tripBody("+15551234567"))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			Trip struct {
				ID string `json:"id"`
			} `json:"trip"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.Trip.ID

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/mine?contact=%2B15551234567", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), id)

	// Wrong contact: the record stays.
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/trips/%s?contact=%%2B19998887777", id), nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotFound, w2.Code)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/trips/%s?contact=%%2B15551234567", id), nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/trips/mine?contact=%2B15551234567", nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	var mine struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &mine))
	assert.Equal(t, 0, mine.Count)
}

func TestCleanupExpired(t *testing.T) {
	router, repo := newTestServer()

	expired := tripBody("+15551234567")
	expired["date"] = "2020-01-01"
	// Past dates are accepted at post time; only the sweeper removes them.
	require.Equal(t, http.StatusCreated, postTrip(t, router, expired).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/cleanup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":1`)

	remaining, err := repo.Find(repositories.TripFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
