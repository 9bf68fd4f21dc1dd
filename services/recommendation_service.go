package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gatherly-api/models"
	"gatherly-api/repositories"
	"gatherly-api/utils"
)

// Scoring weights. They sum to 100, which implicitly caps the score.
const (
	interestWeight     = 40
	proximityWeight    = 25
	trendingWeight     = 20
	popularWeight      = 10
	soonWeight         = 10
	thisMonthWeight    = 5
	proximityRangeKm   = 50
	trendingVelocity   = 2
	popularVelocity    = 1
	// Candidate bounds; cheap over-fetch instead of a true top-N scan.
	recommendationCandidates = 100
	trendingCandidates       = 50
	trendingWindowDays       = 7
)

// ScoredEvent is an event with its computed relevance. Derived per
// request, never persisted.
type ScoredEvent struct {
	models.Event
	RecommendationScore   float64  `json:"recommendation_score"`
	RecommendationReasons []string `json:"recommendation_reasons"`
}

// scoreRule is one additive scoring step. A zero contribution may still
// not carry a reason (the this-month tier doesn't).
type scoreRule func(event *models.Event, user *models.User, now time.Time) (float64, string)

// vetoRule is a terminal check: when it fires the score is forced to
// zero, overriding every additive contribution. Reasons still accumulate.
type vetoRule func(event *models.Event, user *models.User, now time.Time) (bool, string)

// RecommendationOption configures a RecommendationService.
type RecommendationOption func(*RecommendationService)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) RecommendationOption {
	return func(s *RecommendationService) {
		s.now = now
	}
}

// RecommendationService scores candidate events for a user and ranks
// near-term events by RSVP velocity.
type RecommendationService struct {
	events repositories.EventRepository
	users  repositories.UserRepository
	now    func() time.Time

	rules  []scoreRule
	vetoes []vetoRule
}

func NewRecommendationService(events repositories.EventRepository, users repositories.UserRepository, opts ...RecommendationOption) *RecommendationService {
	s := &RecommendationService{
		events: events,
		users:  users,
		now:    time.Now,
		rules: []scoreRule{
			interestMatchRule,
			proximityRule,
			velocityRule,
			temporalRule,
		},
		vetoes: []vetoRule{
			pastEventVeto,
			alreadyAttendingVeto,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score runs the additive rules in order, then applies the vetoes.
func (s *RecommendationService) Score(event *models.Event, user *models.User) ScoredEvent {
	now := s.now()

	score := 0.0
	reasons := []string{}
	for _, rule := range s.rules {
		points, reason := rule(event, user, now)
		score += points
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	for _, veto := range s.vetoes {
		if fired, reason := veto(event, user, now); fired {
			score = 0
			reasons = append(reasons, reason)
		}
	}

	return ScoredEvent{
		Event:                 *event,
		RecommendationScore:   score,
		RecommendationReasons: reasons,
	}
}

// GetRecommendations scores upcoming events against the user and returns
// the top scorers. Zero-score events are dropped.
func (s *RecommendationService) GetRecommendations(userID string, limit int) ([]ScoredEvent, error) {
	if limit < 1 {
		limit = 10
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.events.FindUpcoming(recommendationCandidates)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredEvent, 0, len(candidates))
	for i := range candidates {
		result := s.Score(&candidates[i], user)
		if result.RecommendationScore > 0 {
			scored = append(scored, result)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RecommendationScore > scored[j].RecommendationScore
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// GetTrendingEvents ranks events dated within the next week by raw RSVP
// velocity. No normalization; velocity is the sort key.
func (s *RecommendationService) GetTrendingEvents(limit int) ([]models.Event, error) {
	if limit < 1 {
		limit = 10
	}

	now := s.now()
	events, err := s.events.FindBetween(now, now.Add(trendingWindowDays*24*time.Hour), trendingCandidates)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Velocity(now) > events[j].Velocity(now)
	})

	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// interestMatchRule awards the full interest weight when any user
// interest appears as a case-insensitive substring of the event's
// category, title or description.
func interestMatchRule(event *models.Event, user *models.User, _ time.Time) (float64, string) {
	haystack := strings.ToLower(event.Category + " " + event.Title + " " + event.Description)
	for _, interest := range user.Interests {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest != "" && strings.Contains(haystack, interest) {
			return interestWeight, "Matches your interests"
		}
	}
	return 0, ""
}

// proximityRule awards points on a linear falloff within 50 km. Events or
// users without coordinates simply don't score here; a single event with
// bad coordinates must not break the whole batch.
func proximityRule(event *models.Event, user *models.User, _ time.Time) (float64, string) {
	if !user.HasLocation() || !event.HasCoordinates() {
		return 0, ""
	}

	distance := utils.HaversineDistanceKm(*user.LocationLat, *user.LocationLng, *event.LocationLat, *event.LocationLng)
	if distance >= proximityRangeKm {
		return 0, ""
	}

	points := proximityWeight * (1 - distance/proximityRangeKm)
	return points, fmt.Sprintf("Only %d km away", int(math.Round(distance)))
}

// velocityRule awards tiered points for RSVP velocity. The tiers are
// mutually exclusive.
func velocityRule(event *models.Event, _ *models.User, now time.Time) (float64, string) {
	velocity := event.Velocity(now)
	if velocity > trendingVelocity {
		return trendingWeight, "Trending event"
	}
	if velocity > popularVelocity {
		return popularWeight, "Popular event"
	}
	return 0, ""
}

// temporalRule prefers near-term events. The this-month tier carries no
// reason text; only the score reflects it.
func temporalRule(event *models.Event, _ *models.User, now time.Time) (float64, string) {
	days := event.DaysUntil(now)
	if days > 0 && days < 7 {
		return soonWeight, "Happening soon"
	}
	if days > 0 && days < 30 {
		return thisMonthWeight, ""
	}
	return 0, ""
}

func pastEventVeto(event *models.Event, _ *models.User, now time.Time) (bool, string) {
	if event.DateAndTime.Before(now) {
		return true, "Past event"
	}
	return false, ""
}

func alreadyAttendingVeto(event *models.Event, user *models.User, _ time.Time) (bool, string) {
	for _, attendee := range event.Attendees {
		if attendee.UserID == user.ID {
			return true, "You're already attending"
		}
	}
	return false, ""
}
