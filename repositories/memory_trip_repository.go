package repositories

import (
	"sort"
	"sync"

	"rideboard-api/models"
)

// MemoryTripRepository is the ephemeral TripRepository used when no
// DATABASE_URL is configured, and as the store for tests. Data lives for
// the lifetime of the process only.
type MemoryTripRepository struct {
	mutex sync.RWMutex
	trips []models.TripRecord
}

func NewMemoryTripRepository() *MemoryTripRepository {
	return &MemoryTripRepository{}
}

func (r *MemoryTripRepository) Insert(trip *models.TripRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.trips = append(r.trips, *trip)
	return nil
}

func matchesFilter(trip models.TripRecord, filter TripFilter) bool {
	if filter.RouteKey != "" && trip.RouteKey != filter.RouteKey {
		return false
	}
	if filter.Date != "" && trip.Date != filter.Date {
		return false
	}
	if filter.Contact != "" && trip.Contact != filter.Contact {
		return false
	}
	if filter.OptedIn && (!trip.NotifyMatches || trip.Email == "") {
		return false
	}
	return true
}

func (r *MemoryTripRepository) Find(filter TripFilter) ([]models.TripRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var trips []models.TripRecord
	for _, trip := range r.trips {
		if matchesFilter(trip, filter) {
			trips = append(trips, trip)
		}
	}
	return trips, nil
}

func (r *MemoryTripRepository) FindByContact(contact string) ([]models.TripRecord, error) {
	trips, err := r.Find(TripFilter{Contact: contact})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
	return trips, nil
}

func (r *MemoryTripRepository) Count(filter TripFilter) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var count int64
	for _, trip := range r.trips {
		if matchesFilter(trip, filter) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryTripRepository) DeleteOne(id, contact string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, trip := range r.trips {
		if trip.ID == id && trip.Contact == contact {
			r.trips = append(r.trips[:i], r.trips[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryTripRepository) DeleteExpiredBefore(date string) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	kept := r.trips[:0]
	var deleted int64
	for _, trip := range r.trips {
		if trip.Date < date {
			deleted++
			continue
		}
		kept = append(kept, trip)
	}
	r.trips = kept
	return deleted, nil
}
