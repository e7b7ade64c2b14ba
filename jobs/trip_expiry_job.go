package jobs

import (
	"log"
	"time"

	"rideboard-api/services"
)

// TripExpiryJob periodically deletes trips whose travel date has passed.
type TripExpiryJob struct {
	trips  *services.TripService
	ticker *time.Ticker
	done   chan bool
}

func NewTripExpiryJob(trips *services.TripService, interval time.Duration) *TripExpiryJob {
	return &TripExpiryJob{
		trips:  trips,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the sweeper. It runs once immediately, then on schedule.
func (j *TripExpiryJob) Start() {
	log.Println("Trip expiry job started")

	go func() {
		j.sweep()

		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-j.done:
				log.Println("Trip expiry job stopped")
				return
			}
		}
	}()
}

func (j *TripExpiryJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *TripExpiryJob) sweep() {
	deleted, err := j.trips.SweepExpired()
	if err != nil {
		log.Printf("Error during trip expiry sweep: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("Cleaned up %d expired trip(s)", deleted)
	}
}
