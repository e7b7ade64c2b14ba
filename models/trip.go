package models

import (
	"strings"
	"time"
)

// TripRecord is one posted ride-share trip. Records are immutable after
// creation: the only write operations are insert and delete, corrections
// require delete-and-repost.
type TripRecord struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Contact string `json:"contact" gorm:"not null;index"` // phone or email, doubles as poster identity
	Name    string `json:"name" gorm:"not null;index"`
	Email   string `json:"email"`

	IsStudent bool   `json:"is_student"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender"`
	Bags      int    `json:"bags"`

	Origin      string `json:"origin" gorm:"not null"`
	Destination string `json:"destination" gorm:"not null"`
	RouteKey    string `json:"route_key" gorm:"not null"` // derived, never client-supplied

	Date            string `json:"date" gorm:"not null;index"` // "2006-01-02"
	TimeFrom        string `json:"time_from"`                  // "HH:MM" display form
	TimeTo          string `json:"time_to"`
	TimeFromMinutes int    `json:"time_from_minutes"` // minutes since midnight, comparison form
	TimeToMinutes   int    `json:"time_to_minutes"`

	PriceMin float64 `json:"price_min"` // willingness range, not a fixed fare
	PriceMax float64 `json:"price_max"`

	ExactLocation string    `json:"exact_location"`
	Prefs         string    `json:"prefs"`
	NotifyMatches bool      `json:"notify_matches"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

// BuildRouteKey derives the lowercased "origin→destination" key used for
// fast equality filtering.
func BuildRouteKey(origin, destination string) string {
	return strings.ToLower(strings.TrimSpace(origin)) + "→" + strings.ToLower(strings.TrimSpace(destination))
}
