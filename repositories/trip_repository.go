package repositories

import (
	"rideboard-api/models"
)

// TripFilter narrows Find/Count queries. Zero-value fields are ignored.
type TripFilter struct {
	RouteKey string
	Date     string
	Contact  string

	// OptedIn keeps only records with notify_matches = true and a
	// non-empty email, i.e. notification subscribers.
	OptedIn bool
}

// TripRepository is the storage abstraction for trip records. Two
// implementations exist: a durable gorm-backed store and an ephemeral
// in-memory store used when no DATABASE_URL is configured and by tests.
type TripRepository interface {
	Insert(trip *models.TripRecord) error
	Find(filter TripFilter) ([]models.TripRecord, error)
	FindByContact(contact string) ([]models.TripRecord, error)
	Count(filter TripFilter) (int64, error)
	DeleteOne(id, contact string) (bool, error)
	DeleteExpiredBefore(date string) (int64, error)
}
