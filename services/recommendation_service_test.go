package services

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"gatherly-api/models"
)

type fakeUserRepository struct {
	user *models.User
	err  error
}

func (r *fakeUserRepository) FindByID(id string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.user, nil
}

func fixedClock(now time.Time) RecommendationOption {
	return WithClock(func() time.Time { return now })
}

func TestScore(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	newService := func() *RecommendationService {
		return NewRecommendationService(&fakeEventRepository{}, &fakeUserRepository{}, fixedClock(now))
	}

	Convey("Given the scoring rules", t, func() {
		Convey("An interest matching the category scores the interest weight", func() {
			service := newService()
			user := &models.User{ID: "u1", Interests: models.StringSlice{"Tech"}}
			// 40 days out: outside every temporal tier, zero velocity.
			event := &models.Event{ID: "e1", Category: "Technology", Title: "Conference", DateAndTime: now.Add(40 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 40)
			So(result.RecommendationReasons, ShouldResemble, []string{"Matches your interests"})
		})

		Convey("Interest matching is a case-insensitive substring over category, title and description", func() {
			service := newService()
			user := &models.User{ID: "u1", Interests: models.StringSlice{"jazz"}}
			event := &models.Event{ID: "e1", Category: "Music", Title: "Jazz Night", DateAndTime: now.Add(40 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 40)
		})

		Convey("A nearby event scores on the linear proximity falloff", func() {
			service := newService()
			lat, lng := 47.6062, -122.3321
			user := &models.User{ID: "u1", LocationLat: &lat, LocationLng: &lng}
			event := &models.Event{ID: "e1", LocationLat: &lat, LocationLng: &lng, DateAndTime: now.Add(40 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 25)
			So(result.RecommendationReasons, ShouldResemble, []string{"Only 0 km away"})
		})

		Convey("An event beyond 50 km scores nothing for proximity", func() {
			service := newService()
			userLat, userLng := 47.6062, -122.3321
			eventLat, eventLng := 45.5152, -122.6784 // Portland, ~234 km away
			user := &models.User{ID: "u1", LocationLat: &userLat, LocationLng: &userLng}
			event := &models.Event{ID: "e1", LocationLat: &eventLat, LocationLng: &eventLng, DateAndTime: now.Add(40 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 0)
		})

		Convey("Missing coordinates on either side skip proximity without error", func() {
			service := newService()
			user := &models.User{ID: "u1"}
			event := &models.Event{ID: "e1", DateAndTime: now.Add(40 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 0)
			So(result.RecommendationReasons, ShouldBeEmpty)
		})

		Convey("High RSVP velocity scores the trending tier", func() {
			service := newService()
			user := &models.User{ID: "u1"}
			// 10 attendees over 2 days is a velocity of 5.
			event := &models.Event{ID: "e1", AttendeesCount: 10, DateAndTime: now.Add(2 * 24 * time.Hour)}

			result := service.Score(event, user)

			// Trending (20) plus happening soon (10).
			So(result.RecommendationScore, ShouldEqual, 30)
			So(result.RecommendationReasons, ShouldContain, "Trending event")
			So(result.RecommendationReasons, ShouldContain, "Happening soon")
		})

		Convey("Moderate velocity scores the popular tier only", func() {
			service := newService()
			user := &models.User{ID: "u1"}
			// 3 attendees over 2 days is a velocity of 1.5.
			event := &models.Event{ID: "e1", AttendeesCount: 3, DateAndTime: now.Add(2 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 20)
			So(result.RecommendationReasons, ShouldContain, "Popular event")
			So(result.RecommendationReasons, ShouldNotContain, "Trending event")
		})

		Convey("An event within the month scores quietly, with no reason text", func() {
			service := newService()
			user := &models.User{ID: "u1"}
			event := &models.Event{ID: "e1", DateAndTime: now.Add(15 * 24 * time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 5)
			So(result.RecommendationReasons, ShouldBeEmpty)
		})

		Convey("A past event is vetoed to zero even with other matches", func() {
			service := newService()
			user := &models.User{ID: "u1", Interests: models.StringSlice{"Tech"}}
			event := &models.Event{ID: "e1", Category: "Technology", AttendeesCount: 50, DateAndTime: now.Add(-time.Hour)}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 0)
			So(result.RecommendationReasons, ShouldContain, "Past event")
			So(result.RecommendationReasons, ShouldContain, "Matches your interests")
		})

		Convey("An event the user already attends is vetoed to zero", func() {
			service := newService()
			user := &models.User{ID: "u1", Interests: models.StringSlice{"Tech"}}
			event := &models.Event{
				ID:          "e1",
				Category:    "Technology",
				DateAndTime: now.Add(2 * 24 * time.Hour),
				Attendees:   []models.EventAttendee{{EventID: "e1", UserID: "u1"}},
			}

			result := service.Score(event, user)

			So(result.RecommendationScore, ShouldEqual, 0)
			So(result.RecommendationReasons, ShouldContain, "You're already attending")
		})
	})
}

func TestGetRecommendations(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a user and a set of upcoming candidates", t, func() {
		user := &models.User{ID: "u1", Interests: models.StringSlice{"Tech"}}
		users := &fakeUserRepository{user: user}

		events := &fakeEventRepository{
			upcomingEvents: []models.Event{
				// Scores 40 for the interest match.
				{ID: "match", Category: "Technology", DateAndTime: now.Add(40 * 24 * time.Hour)},
				// Scores 5 from the this-month tier.
				{ID: "soonish", Category: "Cooking", DateAndTime: now.Add(15 * 24 * time.Hour)},
				// No rule fires; dropped from the results.
				{ID: "irrelevant", Category: "Cooking", DateAndTime: now.Add(60 * 24 * time.Hour)},
				// Vetoed: the user already attends.
				{ID: "attending", Category: "Technology", DateAndTime: now.Add(40 * 24 * time.Hour),
					Attendees: []models.EventAttendee{{EventID: "attending", UserID: "u1"}}},
			},
		}

		service := NewRecommendationService(events, users, fixedClock(now))

		Convey("When fetching recommendations", func() {
			recommendations, err := service.GetRecommendations("u1", 10)

			Convey("Then only positive scorers are returned, best first", func() {
				So(err, ShouldBeNil)
				So(len(recommendations), ShouldEqual, 2)
				So(recommendations[0].ID, ShouldEqual, "match")
				So(recommendations[0].RecommendationScore, ShouldEqual, 40)
				So(recommendations[1].ID, ShouldEqual, "soonish")
			})
		})

		Convey("When the limit is smaller than the result set", func() {
			recommendations, err := service.GetRecommendations("u1", 1)

			So(err, ShouldBeNil)
			So(len(recommendations), ShouldEqual, 1)
			So(recommendations[0].ID, ShouldEqual, "match")
		})

		Convey("When the user lookup fails", func() {
			failing := &fakeUserRepository{err: fmt.Errorf("user not found")}
			service := NewRecommendationService(events, failing, fixedClock(now))

			_, err := service.GetRecommendations("missing", 10)

			So(err, ShouldNotBeNil)
		})
	})
}

func TestGetTrendingEvents(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given events within the trending window", t, func() {
		events := &fakeEventRepository{
			betweenEvents: []models.Event{
				// Velocity 2: 10 attendees over 5 days.
				{ID: "steady", AttendeesCount: 10, DateAndTime: now.Add(5 * 24 * time.Hour)},
				// Velocity 15: imminent event divides by the one-day floor.
				{ID: "hot", AttendeesCount: 15, DateAndTime: now.Add(6 * time.Hour)},
				// Velocity 1: 3 attendees over 3 days.
				{ID: "quiet", AttendeesCount: 3, DateAndTime: now.Add(3 * 24 * time.Hour)},
			},
		}
		service := NewRecommendationService(events, &fakeUserRepository{}, fixedClock(now))

		Convey("When fetching trending events", func() {
			trending, err := service.GetTrendingEvents(10)

			Convey("Then the query spans exactly the next seven days", func() {
				So(err, ShouldBeNil)
				So(events.betweenFrom.Equal(now), ShouldBeTrue)
				So(events.betweenTo.Equal(now.Add(7*24*time.Hour)), ShouldBeTrue)
			})

			Convey("Then events are ranked by raw velocity", func() {
				So(len(trending), ShouldEqual, 3)
				So(trending[0].ID, ShouldEqual, "hot")
				So(trending[1].ID, ShouldEqual, "steady")
				So(trending[2].ID, ShouldEqual, "quiet")
			})
		})

		Convey("When the limit truncates the ranking", func() {
			trending, err := service.GetTrendingEvents(2)

			So(err, ShouldBeNil)
			So(len(trending), ShouldEqual, 2)
			So(trending[0].ID, ShouldEqual, "hot")
		})
	})
}
