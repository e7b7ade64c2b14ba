package services

import (
	"math"
	"sort"
	"strings"

	"rideboard-api/models"
	"rideboard-api/repositories"
)

// DefaultMatchLimit caps result sets when the caller gives no limit.
const DefaultMatchLimit = 50

// SimilarityMode selects how the two per-field route scores combine.
type SimilarityMode int

const (
	// SimilarityAdditive sums the origin and destination scores; any
	// overlap at all keeps a candidate. Used by search.
	SimilarityAdditive SimilarityMode = iota
	// SimilarityStrict requires both origin and destination to overlap.
	// Used as the notification gate.
	SimilarityStrict
)

// MatchQuery carries the search parameters. Nil pointer fields mean the
// corresponding filter is disabled.
type MatchQuery struct {
	Origin      string
	Destination string
	Date        string

	TimeFromMinutes *int
	TimeToMinutes   *int

	PriceMin *float64
	PriceMax *float64

	// Supplemental filters: substring match on prefs, maximum bag count.
	PrefsContains string
	MaxBags       *int

	// ExcludeContact and ExcludeID drop a poster's own records from the
	// result set.
	ExcludeContact string
	ExcludeID      string

	Limit int
}

// ScoredTrip is a match result with its ranking keys.
type ScoredTrip struct {
	models.TripRecord
	Similarity   float64 `json:"similarity"`
	TimeDistance float64 `json:"time_distance_minutes"`
}

type MatchService struct {
	repo repositories.TripRepository
}

func NewMatchService(repo repositories.TripRepository) *MatchService {
	return &MatchService{repo: repo}
}

// placeSimilarity scores the textual overlap of two place names:
// 1.0 when either trimmed, lowercased string contains the other,
// 0.5 when any whitespace token of one appears in the other, else 0.
// "Boston" matches "boston logan" at 1.0.
func placeSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1.0
	}

	for _, token := range strings.Fields(a) {
		if strings.Contains(b, token) {
			return 0.5
		}
	}
	for _, token := range strings.Fields(b) {
		if strings.Contains(a, token) {
			return 0.5
		}
	}

	return 0
}

// RouteSimilarity scores a candidate route against a query route. An
// empty query field disables that half of the scoring. The boolean
// reports whether the candidate passes the mode's acceptance rule.
func RouteSimilarity(qOrigin, qDestination, cOrigin, cDestination string, mode SimilarityMode) (float64, bool) {
	if qOrigin == "" && qDestination == "" {
		return 0, true
	}

	var originScore, destScore float64
	if qOrigin != "" {
		originScore = placeSimilarity(qOrigin, cOrigin)
	}
	if qDestination != "" {
		destScore = placeSimilarity(qDestination, cDestination)
	}
	score := originScore + destScore

	if mode == SimilarityStrict {
		if qOrigin != "" && originScore <= 0 {
			return score, false
		}
		if qDestination != "" && destScore <= 0 {
			return score, false
		}
		return score, true
	}

	return score, score > 0
}

// rangesOverlap is the closed-interval overlap test used for both time
// windows (minutes since midnight) and price ranges.
func rangesOverlap(aMin, aMax, bMin, bMax float64) bool {
	return aMin <= bMax && bMin <= aMax
}

// FindMatches filters and ranks stored trips against the query.
//
// Pipeline: exact date prefilter (pushed into the store), fuzzy route
// scoring, time-window overlap filter, price-window overlap filter,
// supplemental prefs/bags filters, then ranking. With a time window the
// primary key is the distance between the true midpoints of the query
// and candidate windows (ascending), similarity breaking ties; without
// one, similarity alone (descending).
func (s *MatchService) FindMatches(query MatchQuery) ([]ScoredTrip, error) {
	candidates, err := s.repo.Find(repositories.TripFilter{Date: query.Date})
	if err != nil {
		return nil, err
	}

	timeFiltered := query.TimeFromMinutes != nil && query.TimeToMinutes != nil
	priceFiltered := query.PriceMin != nil && query.PriceMax != nil
	prefsNeedle := strings.ToLower(strings.TrimSpace(query.PrefsContains))

	results := make([]ScoredTrip, 0, len(candidates))
	for _, candidate := range candidates {
		if query.ExcludeContact != "" && candidate.Contact == query.ExcludeContact {
			continue
		}
		if query.ExcludeID != "" && candidate.ID == query.ExcludeID {
			continue
		}

		score, ok := RouteSimilarity(query.Origin, query.Destination,
			candidate.Origin, candidate.Destination, SimilarityAdditive)
		if !ok {
			continue
		}

		scored := ScoredTrip{TripRecord: candidate, Similarity: score}

		if timeFiltered {
			if !rangesOverlap(
				float64(*query.TimeFromMinutes), float64(*query.TimeToMinutes),
				float64(candidate.TimeFromMinutes), float64(candidate.TimeToMinutes)) {
				continue
			}
			queryMid := float64(*query.TimeFromMinutes+*query.TimeToMinutes) / 2
			candidateMid := float64(candidate.TimeFromMinutes+candidate.TimeToMinutes) / 2
			scored.TimeDistance = math.Abs(queryMid - candidateMid)
		}

		if priceFiltered {
			if !rangesOverlap(*query.PriceMin, *query.PriceMax, candidate.PriceMin, candidate.PriceMax) {
				continue
			}
		}

		if prefsNeedle != "" && !strings.Contains(strings.ToLower(candidate.Prefs), prefsNeedle) {
			continue
		}
		if query.MaxBags != nil && candidate.Bags > *query.MaxBags {
			continue
		}

		results = append(results, scored)
	}

	if timeFiltered {
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].TimeDistance != results[j].TimeDistance {
				return results[i].TimeDistance < results[j].TimeDistance
			}
			return results[i].Similarity > results[j].Similarity
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Similarity > results[j].Similarity
		})
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
