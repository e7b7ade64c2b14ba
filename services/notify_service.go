package services

import (
	"log"

	"rideboard-api/repositories"
)

// TripPostedEvent is emitted after a trip is successfully stored.
type TripPostedEvent struct {
	TripID      string
	Origin      string
	Destination string
	Date        string
	Contact     string
}

// MatchMailer delivers a match digest to one subscriber.
type MatchMailer interface {
	SendMatchDigest(toEmail, toName string, origin, destination, date string, matches []ScoredTrip) error
}

// NotificationDispatcher consumes TripPostedEvents: it finds opted-in
// posters on the same date whose stored route overlaps the event route
// on BOTH origin and destination (a stricter gate than search scoring),
// then mails each one the current match set, excluding their own posts.
type NotificationDispatcher struct {
	repo    repositories.TripRepository
	matcher *MatchService
	mailer  MatchMailer
}

func NewNotificationDispatcher(repo repositories.TripRepository, matcher *MatchService, mailer MatchMailer) *NotificationDispatcher {
	return &NotificationDispatcher{
		repo:    repo,
		matcher: matcher,
		mailer:  mailer,
	}
}

// Dispatch notifies subscribers about a new post. Every failure here is
// logged and swallowed: the posting flow must succeed regardless of
// notification outcome. Returns the number of digests sent.
//
// Match lookups for notifications carry no time or price bounds; the
// digest shows each candidate's own time and price range instead.
func (d *NotificationDispatcher) Dispatch(event TripPostedEvent) int {
	subscribers, err := d.repo.Find(repositories.TripFilter{
		Date:    event.Date,
		OptedIn: true,
	})
	if err != nil {
		log.Printf("notification lookup failed for trip %s: %v", event.TripID, err)
		return 0
	}

	sent := 0
	notified := make(map[string]bool)
	for _, subscriber := range subscribers {
		if subscriber.Contact == event.Contact || notified[subscriber.Contact] {
			continue
		}

		_, ok := RouteSimilarity(event.Origin, event.Destination,
			subscriber.Origin, subscriber.Destination, SimilarityStrict)
		if !ok {
			continue
		}

		matches, err := d.matcher.FindMatches(MatchQuery{
			Origin:         event.Origin,
			Destination:    event.Destination,
			Date:           event.Date,
			ExcludeContact: subscriber.Contact,
		})
		if err != nil {
			log.Printf("match lookup failed for subscriber %s: %v", subscriber.Contact, err)
			continue
		}
		if len(matches) == 0 {
			continue
		}

		if err := d.mailer.SendMatchDigest(subscriber.Email, subscriber.Name,
			event.Origin, event.Destination, event.Date, matches); err != nil {
			log.Printf("match digest to %s failed: %v", subscriber.Email, err)
			continue
		}

		notified[subscriber.Contact] = true
		sent++
	}

	return sent
}
