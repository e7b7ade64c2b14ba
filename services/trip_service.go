package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideboard-api/models"
	"rideboard-api/repositories"
	"rideboard-api/utils"
)

var (
	// ErrValidation marks user input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateTrip marks a second post for the same contact, date
	// and route.
	ErrDuplicateTrip = errors.New("a trip for this contact, date and route already exists")
)

// PostTripInput is everything a post form yields. Times are "HH:MM"
// strings, the date is "2006-01-02".
type PostTripInput struct {
	Name          string
	Contact       string
	Email         string
	IsStudent     bool
	Age           *int
	Gender        string
	Bags          int
	Origin        string
	Destination   string
	Date          string
	TimeFrom      string
	TimeTo        string
	PriceMin      float64
	PriceMax      float64
	ExactLocation string
	Prefs         string
	NotifyMatches bool
}

type TripService struct {
	repo repositories.TripRepository
}

func NewTripService(repo repositories.TripRepository) *TripService {
	return &TripService{repo: repo}
}

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func (s *TripService) validate(in PostTripInput) (*models.TripRecord, error) {
	name := strings.TrimSpace(in.Name)
	contact := strings.TrimSpace(in.Contact)
	origin := strings.TrimSpace(in.Origin)
	destination := strings.TrimSpace(in.Destination)

	if name == "" || contact == "" || origin == "" || destination == "" {
		return nil, validationErrorf("name, contact, origin, and destination are required")
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, validationErrorf("invalid date %q, expected YYYY-MM-DD", in.Date)
	}

	fromMinutes, err := utils.ParseClock(in.TimeFrom)
	if err != nil {
		return nil, validationErrorf("%v", err)
	}
	toMinutes, err := utils.ParseClock(in.TimeTo)
	if err != nil {
		return nil, validationErrorf("%v", err)
	}
	if toMinutes <= fromMinutes {
		return nil, validationErrorf("latest time must be after earliest time")
	}

	if in.PriceMin < 0 || in.PriceMax < 0 {
		return nil, validationErrorf("prices must be non-negative")
	}
	if in.PriceMin > in.PriceMax {
		return nil, validationErrorf("price min must not exceed price max")
	}
	if in.Bags < 0 {
		return nil, validationErrorf("bag count must be non-negative")
	}
	if in.Age != nil && *in.Age <= 0 {
		return nil, validationErrorf("age must be positive")
	}
	if in.Email != "" && !utils.IsValidEmail(in.Email) {
		return nil, validationErrorf("invalid email address")
	}

	return &models.TripRecord{
		ID:              uuid.New().String(),
		Name:            name,
		Contact:         contact,
		Email:           strings.TrimSpace(in.Email),
		IsStudent:       in.IsStudent,
		Age:             in.Age,
		Gender:          in.Gender,
		Bags:            in.Bags,
		Origin:          origin,
		Destination:     destination,
		RouteKey:        models.BuildRouteKey(origin, destination),
		Date:            in.Date,
		TimeFrom:        utils.FormatClock(fromMinutes),
		TimeTo:          utils.FormatClock(toMinutes),
		TimeFromMinutes: fromMinutes,
		TimeToMinutes:   toMinutes,
		PriceMin:        in.PriceMin,
		PriceMax:        in.PriceMax,
		ExactLocation:   strings.TrimSpace(in.ExactLocation),
		Prefs:           strings.TrimSpace(in.Prefs),
		NotifyMatches:   in.NotifyMatches,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// PostTrip validates the input, applies the duplicate guard, and stores
// the record. The duplicate check fails open: a storage error there is
// logged and the insert proceeds rather than blocking the user.
func (s *TripService) PostTrip(in PostTripInput) (*models.TripRecord, error) {
	trip, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(repositories.TripFilter{
		Contact:  trip.Contact,
		Date:     trip.Date,
		RouteKey: trip.RouteKey,
	})
	if err != nil {
		log.Printf("duplicate check failed, allowing insert: %v", err)
	} else if count > 0 {
		return nil, ErrDuplicateTrip
	}

	if err := s.repo.Insert(trip); err != nil {
		return nil, fmt.Errorf("failed to store trip: %w", err)
	}
	return trip, nil
}

// TripsByContact lists a poster's records, newest first.
func (s *TripService) TripsByContact(contact string) ([]models.TripRecord, error) {
	return s.repo.FindByContact(strings.TrimSpace(contact))
}

// DeleteTrip removes a record only when both id and contact match the
// stored record. A contact mismatch is reported as a failed delete and
// leaves the record untouched.
func (s *TripService) DeleteTrip(id, contact string) (bool, error) {
	return s.repo.DeleteOne(id, strings.TrimSpace(contact))
}

// SweepExpired deletes all records whose travel date has passed,
// measured against the server's local today. Zero deletions is success.
func (s *TripService) SweepExpired() (int64, error) {
	today := time.Now().Format("2006-01-02")
	return s.repo.DeleteExpiredBefore(today)
}
