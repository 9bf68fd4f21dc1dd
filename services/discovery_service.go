package services

import (
	"sort"

	"gatherly-api/models"
	"gatherly-api/repositories"
	"gatherly-api/utils"
)

// minFetchBound is the per-branch candidate floor when two query branches
// have to be merged in memory. The bound max(100, limit*5) can truncate
// true results on very large datasets; acceptable at current scale, a
// cursor-based streaming merge is the upgrade path.
const minFetchBound = 100

// LocationSelector is the optional location part of an event query.
// Geo radius wins over city, city over zip.
type LocationSelector struct {
	Lat         *float64
	Lng         *float64
	RadiusMiles *float64
	City        string
	ZipCode     string
}

func (l LocationSelector) hasGeo() bool {
	return l.Lat != nil && l.Lng != nil && l.RadiusMiles != nil
}

func (l LocationSelector) active() bool {
	return l.hasGeo() || l.City != "" || l.ZipCode != ""
}

// EventPage is one page of a filtered event listing.
type EventPage struct {
	Events     []models.Event   `json:"events"`
	Pagination utils.Pagination `json:"pagination"`
}

// DiscoveryService builds combined event queries: non-location filters
// merged with a geo-radius, city or zip selector, with online events
// always riding along.
type DiscoveryService struct {
	events repositories.EventRepository
}

func NewDiscoveryService(events repositories.EventRepository) *DiscoveryService {
	return &DiscoveryService{events: events}
}

// FilterEvents resolves the location selector, fetches the matching
// branches and returns one page of date-ordered results.
func (s *DiscoveryService) FilterEvents(f repositories.EventFilter, loc LocationSelector, page, limit int) (*EventPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	if !loc.active() {
		events, total, err := s.events.Find(f, (page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		return &EventPage{
			Events:     events,
			Pagination: utils.NewPagination(page, limit, total),
		}, nil
	}

	fetchLimit := fetchBound(limit)

	// The locationType filter alone decides whether each branch
	// participates; the branch queries pin location_type themselves.
	branchFilter := f
	branchFilter.LocationType = ""

	var inPerson []models.Event
	var err error
	if f.LocationType != models.LocationTypeOnline {
		switch {
		case loc.hasGeo():
			radiusMeters := utils.MilesToMeters(*loc.RadiusMiles)
			inPerson, err = s.events.FindWithinRadius(branchFilter, *loc.Lat, *loc.Lng, radiusMeters, fetchLimit)
		case loc.City != "":
			inPerson, err = s.events.FindInPerson(branchFilter, loc.City, "", fetchLimit)
		default:
			inPerson, err = s.events.FindInPerson(branchFilter, "", loc.ZipCode, fetchLimit)
		}
		if err != nil {
			return nil, err
		}
	}

	// Online events are always included regardless of distance, city or
	// zip; they have no physical location to match.
	var online []models.Event
	if f.LocationType != models.LocationTypeInPerson {
		online, err = s.events.FindOnline(branchFilter, fetchLimit)
		if err != nil {
			return nil, err
		}
	}

	return mergePage(inPerson, online, page, limit), nil
}

// SearchEvents is FilterEvents with a mandatory text query: q matches as a
// case-insensitive substring of title, description or category.
func (s *DiscoveryService) SearchEvents(q string, f repositories.EventFilter, loc LocationSelector, page, limit int) (*EventPage, error) {
	f.Query = q
	return s.FilterEvents(f, loc, page, limit)
}

// mergePage merges the two branches, re-sorts by date and paginates in
// memory. A single skip/limit query can't span heterogeneous predicates,
// so pagination happens over the merged list.
func mergePage(inPerson, online []models.Event, page, limit int) *EventPage {
	merged := make([]models.Event, 0, len(inPerson)+len(online))
	merged = append(merged, inPerson...)
	merged = append(merged, online...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DateAndTime.Before(merged[j].DateAndTime)
	})

	total := len(merged)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &EventPage{
		Events:     merged[start:end],
		Pagination: utils.NewPagination(page, limit, int64(total)),
	}
}

func fetchBound(limit int) int {
	if bound := limit * 5; bound > minFetchBound {
		return bound
	}
	return minFetchBound
}
