package services

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"gatherly-api/models"
	"gatherly-api/repositories"
)

// fakeEventRepository records the arguments of each call and returns
// canned results, so the services can be exercised without a database.
type fakeEventRepository struct {
	findEvents     []models.Event
	findTotal      int64
	radiusEvents   []models.Event
	inPersonEvents []models.Event
	onlineEvents   []models.Event
	upcomingEvents []models.Event
	betweenEvents  []models.Event

	findCalled     bool
	findOffset     int
	findLimit      int
	radiusCalled   bool
	radiusMeters   float64
	radiusLat      float64
	radiusLng      float64
	radiusLimit    int
	inPersonCalled bool
	inPersonCity   string
	inPersonZip    string
	inPersonLimit  int
	onlineCalled   bool
	onlineLimit    int
	betweenFrom    time.Time
	betweenTo      time.Time

	err error
}

func (r *fakeEventRepository) FindByID(id string) (*models.Event, error) {
	for i := range r.findEvents {
		if r.findEvents[i].ID == id {
			return &r.findEvents[i], nil
		}
	}
	return nil, fmt.Errorf("event %s not found", id)
}

func (r *fakeEventRepository) Find(f repositories.EventFilter, offset, limit int) ([]models.Event, int64, error) {
	r.findCalled = true
	r.findOffset = offset
	r.findLimit = limit
	return r.findEvents, r.findTotal, r.err
}

func (r *fakeEventRepository) FindWithinRadius(f repositories.EventFilter, lat, lng, radiusMeters float64, limit int) ([]models.Event, error) {
	r.radiusCalled = true
	r.radiusLat = lat
	r.radiusLng = lng
	r.radiusMeters = radiusMeters
	r.radiusLimit = limit
	return r.radiusEvents, r.err
}

func (r *fakeEventRepository) FindInPerson(f repositories.EventFilter, city, zipCode string, limit int) ([]models.Event, error) {
	r.inPersonCalled = true
	r.inPersonCity = city
	r.inPersonZip = zipCode
	r.inPersonLimit = limit
	return r.inPersonEvents, r.err
}

func (r *fakeEventRepository) FindOnline(f repositories.EventFilter, limit int) ([]models.Event, error) {
	r.onlineCalled = true
	r.onlineLimit = limit
	return r.onlineEvents, r.err
}

func (r *fakeEventRepository) FindUpcoming(limit int) ([]models.Event, error) {
	return r.upcomingEvents, r.err
}

func (r *fakeEventRepository) FindBetween(from, to time.Time, limit int) ([]models.Event, error) {
	r.betweenFrom = from
	r.betweenTo = to
	if len(r.betweenEvents) > limit {
		return r.betweenEvents[:limit], r.err
	}
	return r.betweenEvents, r.err
}

func eventAt(id string, locationType string, date time.Time) models.Event {
	return models.Event{
		ID:           id,
		Title:        "Event " + id,
		LocationType: locationType,
		DateAndTime:  date,
		Status:       models.EventStatusUpcoming,
	}
}

func TestFilterEventsWithoutSelector(t *testing.T) {
	Convey("Given a filter with no location selector", t, func() {
		base := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
		repo := &fakeEventRepository{
			findEvents: []models.Event{
				eventAt("e1", models.LocationTypeInPerson, base),
				eventAt("e2", models.LocationTypeOnline, base.Add(time.Hour)),
			},
			findTotal: 12,
		}
		service := NewDiscoveryService(repo)

		Convey("When filtering the second page", func() {
			page, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{}, 2, 5)

			Convey("Then the query paginates natively", func() {
				So(err, ShouldBeNil)
				So(repo.findCalled, ShouldBeTrue)
				So(repo.findOffset, ShouldEqual, 5)
				So(repo.findLimit, ShouldEqual, 5)
				So(repo.radiusCalled, ShouldBeFalse)
				So(repo.onlineCalled, ShouldBeFalse)
			})

			Convey("Then the pagination reflects the datastore total", func() {
				So(page.Pagination.Page, ShouldEqual, 2)
				So(page.Pagination.Total, ShouldEqual, 12)
				So(page.Pagination.Pages, ShouldEqual, 3)
			})
		})

		Convey("When page and limit are out of range they fall back to defaults", func() {
			_, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{}, 0, -3)

			So(err, ShouldBeNil)
			So(repo.findOffset, ShouldEqual, 0)
			So(repo.findLimit, ShouldEqual, 10)
		})
	})
}

func TestFilterEventsWithCitySelector(t *testing.T) {
	Convey("Given a city selector", t, func() {
		base := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
		repo := &fakeEventRepository{
			inPersonEvents: []models.Event{
				eventAt("seattle-2", models.LocationTypeInPerson, base.Add(48*time.Hour)),
				eventAt("seattle-1", models.LocationTypeInPerson, base),
			},
			onlineEvents: []models.Event{
				eventAt("online-1", models.LocationTypeOnline, base.Add(24*time.Hour)),
			},
		}
		service := NewDiscoveryService(repo)

		Convey("When filtering by city", func() {
			page, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{City: "Seattle"}, 1, 10)

			Convey("Then the in-person branch queries that city", func() {
				So(err, ShouldBeNil)
				So(repo.inPersonCalled, ShouldBeTrue)
				So(repo.inPersonCity, ShouldEqual, "Seattle")
				So(repo.inPersonZip, ShouldEqual, "")
			})

			Convey("Then online events ride along regardless of location", func() {
				So(repo.onlineCalled, ShouldBeTrue)
				So(len(page.Events), ShouldEqual, 3)
			})

			Convey("Then the merged page is ordered by date ascending", func() {
				So(page.Events[0].ID, ShouldEqual, "seattle-1")
				So(page.Events[1].ID, ShouldEqual, "online-1")
				So(page.Events[2].ID, ShouldEqual, "seattle-2")
			})
		})

		Convey("When the filter pins locationType to online", func() {
			_, err := service.FilterEvents(repositories.EventFilter{LocationType: models.LocationTypeOnline}, LocationSelector{City: "Seattle"}, 1, 10)

			Convey("Then the in-person branch is skipped entirely", func() {
				So(err, ShouldBeNil)
				So(repo.inPersonCalled, ShouldBeFalse)
				So(repo.onlineCalled, ShouldBeTrue)
			})
		})

		Convey("When the filter pins locationType to in-person", func() {
			_, err := service.FilterEvents(repositories.EventFilter{LocationType: models.LocationTypeInPerson}, LocationSelector{City: "Seattle"}, 1, 10)

			Convey("Then the online branch is skipped entirely", func() {
				So(err, ShouldBeNil)
				So(repo.inPersonCalled, ShouldBeTrue)
				So(repo.onlineCalled, ShouldBeFalse)
			})
		})
	})
}

func TestFilterEventsWithGeoSelector(t *testing.T) {
	Convey("Given a geo radius selector", t, func() {
		repo := &fakeEventRepository{}
		service := NewDiscoveryService(repo)

		lat, lng, radius := 47.6062, -122.3321, 10.0

		Convey("When filtering within a radius", func() {
			_, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{Lat: &lat, Lng: &lng, RadiusMiles: &radius}, 1, 10)

			Convey("Then the radius query wins over city and zip", func() {
				So(err, ShouldBeNil)
				So(repo.radiusCalled, ShouldBeTrue)
				So(repo.inPersonCalled, ShouldBeFalse)
			})

			Convey("Then miles convert to meters with the stored constant", func() {
				So(repo.radiusMeters, ShouldEqual, 16093.4)
				So(repo.radiusLat, ShouldEqual, lat)
				So(repo.radiusLng, ShouldEqual, lng)
			})
		})

		Convey("When geo and city are both set, geo wins", func() {
			_, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{Lat: &lat, Lng: &lng, RadiusMiles: &radius, City: "Seattle"}, 1, 10)

			So(err, ShouldBeNil)
			So(repo.radiusCalled, ShouldBeTrue)
			So(repo.inPersonCalled, ShouldBeFalse)
		})

		Convey("When city and zip are both set, city wins", func() {
			_, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{City: "Seattle", ZipCode: "98101"}, 1, 10)

			So(err, ShouldBeNil)
			So(repo.inPersonCalled, ShouldBeTrue)
			So(repo.inPersonCity, ShouldEqual, "Seattle")
			So(repo.inPersonZip, ShouldEqual, "")
		})
	})
}

func TestFilterEventsMergedPagination(t *testing.T) {
	Convey("Given more merged results than one page holds", t, func() {
		base := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)

		inPerson := make([]models.Event, 0, 15)
		for i := 0; i < 15; i++ {
			inPerson = append(inPerson, eventAt(fmt.Sprintf("p%02d", i), models.LocationTypeInPerson, base.Add(time.Duration(i*2)*time.Hour)))
		}
		online := make([]models.Event, 0, 10)
		for i := 0; i < 10; i++ {
			online = append(online, eventAt(fmt.Sprintf("o%02d", i), models.LocationTypeOnline, base.Add(time.Duration(i*2+1)*time.Hour)))
		}

		repo := &fakeEventRepository{inPersonEvents: inPerson, onlineEvents: online}
		service := NewDiscoveryService(repo)

		Convey("When requesting the last page", func() {
			page, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{City: "Seattle"}, 3, 10)

			Convey("Then the final partial page is returned", func() {
				So(err, ShouldBeNil)
				So(len(page.Events), ShouldEqual, 5)
				So(page.Pagination.Total, ShouldEqual, 25)
				So(page.Pagination.Pages, ShouldEqual, 3)
			})
		})

		Convey("When requesting a page past the end", func() {
			page, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{City: "Seattle"}, 9, 10)

			Convey("Then an empty page with correct metadata is returned", func() {
				So(err, ShouldBeNil)
				So(len(page.Events), ShouldEqual, 0)
				So(page.Pagination.Total, ShouldEqual, 25)
			})
		})

		Convey("Branches over-fetch so the merge has enough candidates", func() {
			_, err := service.FilterEvents(repositories.EventFilter{}, LocationSelector{City: "Seattle"}, 1, 10)
			So(err, ShouldBeNil)
			So(repo.inPersonLimit, ShouldEqual, 100)
			So(repo.onlineLimit, ShouldEqual, 100)

			_, err = service.FilterEvents(repositories.EventFilter{}, LocationSelector{City: "Seattle"}, 1, 30)
			So(err, ShouldBeNil)
			So(repo.inPersonLimit, ShouldEqual, 150)
		})
	})
}

func TestSearchEvents(t *testing.T) {
	Convey("Given a search query", t, func() {
		base := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
		repo := &fakeEventRepository{
			findEvents: []models.Event{eventAt("e1", models.LocationTypeOnline, base)},
			findTotal:  1,
		}
		service := NewDiscoveryService(repo)

		Convey("When searching without a location selector", func() {
			page, err := service.SearchEvents("jazz", repositories.EventFilter{}, LocationSelector{}, 1, 10)

			Convey("Then the query runs through the same filter pipeline", func() {
				So(err, ShouldBeNil)
				So(repo.findCalled, ShouldBeTrue)
				So(len(page.Events), ShouldEqual, 1)
			})
		})
	})
}
