package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideboard-api/models"
	"rideboard-api/repositories"
	"rideboard-api/services"
)

// mockMailer is a hand-written test double for services.MatchMailer.
type mockMailer struct {
	send func(toEmail, toName, origin, destination, date string, matches []services.ScoredTrip) error
}

func (m *mockMailer) SendMatchDigest(toEmail, toName, origin, destination, date string, matches []services.ScoredTrip) error {
	return m.send(toEmail, toName, origin, destination, date, matches)
}

var _ services.MatchMailer = (*mockMailer)(nil)

type sentDigest struct {
	to      string
	matches []services.ScoredTrip
}

func recordingMailer(sent *[]sentDigest) *mockMailer {
	return &mockMailer{
		send: func(toEmail, toName, origin, destination, date string, matches []services.ScoredTrip) error {
			*sent = append(*sent, sentDigest{to: toEmail, matches: matches})
			return nil
		},
	}
}

func subscriberTrip(contact, email, origin, destination, date string) models.TripRecord {
	trip := storedTrip(origin, destination, date, 540, 600, 10, 40, contact)
	trip.Email = email
	trip.NotifyMatches = true
	return trip
}

func dispatcherWith(t *testing.T, mailer services.MatchMailer, trips ...models.TripRecord) *services.NotificationDispatcher {
	t.Helper()
	repo := repositories.NewMemoryTripRepository()
	for i := range trips {
		require.NoError(t, repo.Insert(&trips[i]))
	}
	return services.NewNotificationDispatcher(repo, services.NewMatchService(repo), mailer)
}

func TestDispatch_EmailsMatchingSubscriber(t *testing.T) {
	subscriber := subscriberTrip("+15557654321", "sub@example.com", "Amherst", "Boston Logan", "2025-01-10")
	poster := storedTrip("Amherst", "Boston", "2025-01-10", 480, 600, 20, 40, "+15551234567")

	var sent []sentDigest
	dispatcher := dispatcherWith(t, recordingMailer(&sent), subscriber, poster)

	notified := dispatcher.Dispatch(services.TripPostedEvent{
		TripID:      poster.ID,
		Origin:      poster.Origin,
		Destination: poster.Destination,
		Date:        poster.Date,
		Contact:     poster.Contact,
	})

	assert.Equal(t, 1, notified)
	require.Len(t, sent, 1)
	assert.Equal(t, "sub@example.com", sent[0].to)

	// The digest excludes the subscriber's own postings.
	require.Len(t, sent[0].matches, 1)
	assert.Equal(t, poster.Contact, sent[0].matches[0].Contact)
}

func TestDispatch_SkipsThePosterThemselves(t *testing.T) {
	// The poster is opted in, but must not be notified about their own post.
	poster := subscriberTrip("+15551234567", "poster@example.com", "Amherst", "Boston", "2025-01-10")

	var sent []sentDigest
	dispatcher := dispatcherWith(t, recordingMailer(&sent), poster)

	notified := dispatcher.Dispatch(services.TripPostedEvent{
		TripID:      poster.ID,
		Origin:      poster.Origin,
		Destination: poster.Destination,
		Date:        poster.Date,
		Contact:     poster.Contact,
	})

	assert.Equal(t, 0, notified)
	assert.Empty(t, sent)
}

func TestDispatch_RequiresBothRouteFieldsToOverlap(t *testing.T) {
	// Origin overlaps, destination does not: the strict gate rejects.
	subscriber := subscriberTrip("+15557654321", "sub@example.com", "Amherst", "New York", "2025-01-10")
	poster := storedTrip("Amherst", "Boston", "2025-01-10", 480, 600, 20, 40, "+15551234567")

	var sent []sentDigest
	dispatcher := dispatcherWith(t, recordingMailer(&sent), subscriber, poster)

	notified := dispatcher.Dispatch(services.TripPostedEvent{
		Origin:      poster.Origin,
		Destination: poster.Destination,
		Date:        poster.Date,
		Contact:     poster.Contact,
	})

	assert.Equal(t, 0, notified)
	assert.Empty(t, sent)
}

func TestDispatch_IgnoresNonSubscribers(t *testing.T) {
	// Same route and date, but not opted in / no email.
	optedOut := storedTrip("Amherst", "Boston", "2025-01-10", 540, 600, 10, 40, "+15550000001")
	optedOut.Email = "optedout@example.com"
	noEmail := storedTrip("Amherst", "Boston", "2025-01-10", 540, 600, 10, 40, "+15550000002")
	noEmail.NotifyMatches = true
	poster := storedTrip("Amherst", "Boston", "2025-01-10", 480, 600, 20, 40, "+15551234567")

	var sent []sentDigest
	dispatcher := dispatcherWith(t, recordingMailer(&sent), optedOut, noEmail, poster)

	notified := dispatcher.Dispatch(services.TripPostedEvent{
		Origin:      poster.Origin,
		Destination: poster.Destination,
		Date:        poster.Date,
		Contact:     poster.Contact,
	})

	assert.Equal(t, 0, notified)
	assert.Empty(t, sent)
}

func TestDispatch_OneDigestPerContact(t *testing.T) {
	first := subscriberTrip("+15557654321", "sub@example.com", "Amherst", "Boston", "2025-01-10")
	second := subscriberTrip("+15557654321", "sub@example.com", "Amherst Center", "Boston Logan", "2025-01-10")
	poster := storedTrip("Amherst", "Boston", "2025-01-10", 480, 600, 20, 40, "+15551234567")

	var sent []sentDigest
	dispatcher := dispatcherWith(t, recordingMailer(&sent), first, second, poster)

	notified := dispatcher.Dispatch(services.TripPostedEvent{
		Origin:      poster.Origin,
		Destination: poster.Destination,
		Date:        poster.Date,
		Contact:     poster.Contact,
	})

	assert.Equal(t, 1, notified)
	assert.Len(t, sent, 1)
}

func TestDispatch_MailFailureIsSuppressed(t *testing.T) {
	subscriber := subscriberTrip("+15557654321", "sub@example.com", "Amherst", "Boston", "2025-01-10")
	poster := storedTrip("Amherst", "Boston", "2025-01-10", 480, 600, 20, 40, "+15551234567")

	failing := &mockMailer{
		send: func(string, string, string, string, string, []services.ScoredTrip) error {
			return errors.New("smtp: connection refused")
		},
	}
	dispatcher := dispatcherWith(t, failing, subscriber, poster)

	// Must not panic or surface the error; the send just does not count.
	notified := dispatcher.Dispatch(services.TripPostedEvent{
		Origin:      poster.Origin,
		Destination: poster.Destination,
		Date:        poster.Date,
		Contact:     poster.Contact,
	})

	assert.Equal(t, 0, notified)
}
