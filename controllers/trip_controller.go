package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rideboard-api/models"
	"rideboard-api/services"
	"rideboard-api/utils"
)

type TripController struct {
	trips      *services.TripService
	matcher    *services.MatchService
	dispatcher *services.NotificationDispatcher
}

func NewTripController(trips *services.TripService, matcher *services.MatchService, dispatcher *services.NotificationDispatcher) *TripController {
	return &TripController{
		trips:      trips,
		matcher:    matcher,
		dispatcher: dispatcher,
	}
}

type PostTripRequest struct {
	Name          string  `json:"name" binding:"required"`
	Contact       string  `json:"contact" binding:"required"`
	Email         string  `json:"email"`
	IsStudent     bool    `json:"is_student"`
	Age           *int    `json:"age"`
	Gender        string  `json:"gender"`
	Bags          int     `json:"bags"`
	Origin        string  `json:"origin" binding:"required"`
	Destination   string  `json:"destination" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	TimeFrom      string  `json:"time_from" binding:"required"`
	TimeTo        string  `json:"time_to" binding:"required"`
	PriceMin      float64 `json:"price_min"`
	PriceMax      float64 `json:"price_max"`
	ExactLocation string  `json:"exact_location"`
	Prefs         string  `json:"prefs"`
	NotifyMatches bool    `json:"notify_matches"`
}

// TripResponse adds the classified contact type so clients can choose a
// tel:/wa.me or mailto: link strategy.
type TripResponse struct {
	models.TripRecord
	ContactType utils.ContactType `json:"contact_type"`
}

type MatchResponse struct {
	TripResponse
	Similarity   float64 `json:"similarity"`
	TimeDistance float64 `json:"time_distance_minutes"`
}

func toTripResponse(trip models.TripRecord) TripResponse {
	return TripResponse{
		TripRecord:  trip,
		ContactType: utils.ClassifyContact(trip.Contact),
	}
}

func toMatchResponses(matches []services.ScoredTrip) []MatchResponse {
	responses := make([]MatchResponse, 0, len(matches))
	for _, match := range matches {
		responses = append(responses, MatchResponse{
			TripResponse: toTripResponse(match.TripRecord),
			Similarity:   match.Similarity,
			TimeDistance: match.TimeDistance,
		})
	}
	return responses
}

// PostTrip stores a new trip, notifies opted-in posters on the same
// route and date, and returns the record with its current matches.
func (tc *TripController) PostTrip(c *gin.Context) {
	var req PostTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	trip, err := tc.trips.PostTrip(services.PostTripInput{
		Name:          req.Name,
		Contact:       req.Contact,
		Email:         req.Email,
		IsStudent:     req.IsStudent,
		Age:           req.Age,
		Gender:        req.Gender,
		Bags:          req.Bags,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Date:          req.Date,
		TimeFrom:      req.TimeFrom,
		TimeTo:        req.TimeTo,
		PriceMin:      req.PriceMin,
		PriceMax:      req.PriceMax,
		ExactLocation: req.ExactLocation,
		Prefs:         req.Prefs,
		NotifyMatches: req.NotifyMatches,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendValidationError(c, err.Error())
		case errors.Is(err, services.ErrDuplicateTrip):
			utils.SendError(c, http.StatusConflict, err.Error())
		default:
			utils.SendError(c, http.StatusInternalServerError, "Failed to post trip")
		}
		return
	}

	// Notification outcome never affects the posting flow.
	tc.dispatcher.Dispatch(services.TripPostedEvent{
		TripID:      trip.ID,
		Origin:      trip.Origin,
		Destination: trip.Destination,
		Date:        trip.Date,
		Contact:     trip.Contact,
	})

	matches, err := tc.matcher.FindMatches(services.MatchQuery{
		Origin:          trip.Origin,
		Destination:     trip.Destination,
		Date:            trip.Date,
		TimeFromMinutes: &trip.TimeFromMinutes,
		TimeToMinutes:   &trip.TimeToMinutes,
		PriceMin:        &trip.PriceMin,
		PriceMax:        &trip.PriceMax,
		ExcludeID:       trip.ID,
	})
	if err != nil {
		matches = nil
	}

	utils.SendCreated(c, "Trip posted successfully", gin.H{
		"trip":    toTripResponse(*trip),
		"matches": toMatchResponses(matches),
	})
}

// SearchTrips runs the matching engine against query parameters. Time
// and price filters apply only when both bounds of the pair are given.
func (tc *TripController) SearchTrips(c *gin.Context) {
	query := services.MatchQuery{
		Origin:        c.Query("origin"),
		Destination:   c.Query("destination"),
		Date:          c.Query("date"),
		PrefsContains: c.Query("prefs"),
	}

	timeFrom, ok := parseClockParam(c, "time_from")
	if !ok {
		return
	}
	timeTo, ok := parseClockParam(c, "time_to")
	if !ok {
		return
	}
	if timeFrom != nil && timeTo != nil {
		query.TimeFromMinutes = timeFrom
		query.TimeToMinutes = timeTo
	}

	priceMin, ok := parseFloatParam(c, "price_min")
	if !ok {
		return
	}
	priceMax, ok := parseFloatParam(c, "price_max")
	if !ok {
		return
	}
	if priceMin != nil && priceMax != nil {
		query.PriceMin = priceMin
		query.PriceMax = priceMax
	}

	if raw := c.Query("max_bags"); raw != "" {
		maxBags, err := strconv.Atoi(raw)
		if err != nil || maxBags < 0 {
			utils.SendValidationError(c, "max_bags must be a non-negative integer")
			return
		}
		query.MaxBags = &maxBags
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			utils.SendValidationError(c, "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}

	matches, err := tc.matcher.FindMatches(query)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(matches),
		"matches": toMatchResponses(matches),
	})
}

// MyTrips lists all records posted under a contact, newest first.
func (tc *TripController) MyTrips(c *gin.Context) {
	contact := c.Query("contact")
	if contact == "" {
		utils.SendValidationError(c, "contact is required")
		return
	}

	trips, err := tc.trips.TripsByContact(contact)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch trips")
		return
	}

	responses := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		responses = append(responses, toTripResponse(trip))
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(responses),
		"trips": responses,
	})
}

// DeleteTrip removes a record when both the id and the contact string
// match. The contact check is the system's only access control.
func (tc *TripController) DeleteTrip(c *gin.Context) {
	id := c.Param("id")
	contact := c.Query("contact")
	if contact == "" {
		utils.SendValidationError(c, "contact is required")
		return
	}

	deleted, err := tc.trips.DeleteTrip(id, contact)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to delete trip")
		return
	}
	if !deleted {
		utils.SendError(c, http.StatusNotFound, "Trip not found or contact does not match")
		return
	}

	utils.SendSuccess(c, "Trip deleted", nil)
}

// CleanupExpired runs the expiry sweep on demand. Zero deletions is not
// an error.
func (tc *TripController) CleanupExpired(c *gin.Context) {
	deleted, err := tc.trips.SweepExpired()
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Cleanup failed")
		return
	}

	utils.SendSuccess(c, "Cleanup completed", gin.H{"deleted": deleted})
}

func parseClockParam(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	minutes, err := utils.ParseClock(raw)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return nil, false
	}
	return &minutes, true
}

func parseFloatParam(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		utils.SendValidationError(c, name+" must be a non-negative number")
		return nil, false
	}
	return &value, true
}
