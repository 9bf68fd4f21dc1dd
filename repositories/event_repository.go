package repositories

import (
	"time"

	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/utils"
)

// EventFilter carries the non-location filters shared by every event
// listing query. Location selectors (geo radius, city, zip) are method
// arguments so the query branches stay explicit.
type EventFilter struct {
	Category     string
	LocationType string
	EventType    string
	Status       string
	HostedBy     string
	Upcoming     bool
	Past         bool
	Query        string // case-insensitive substring over title/description/category
}

// EventRepository abstracts event reads so the discovery and
// recommendation services can be exercised against fakes.
type EventRepository interface {
	FindByID(id string) (*models.Event, error)
	// Find applies the filter with datastore-native pagination, ordered by
	// date ascending. Used when no location selector is active.
	Find(f EventFilter, offset, limit int) ([]models.Event, int64, error)
	// FindWithinRadius selects in-person events within radiusMeters of the
	// point, ordered by ascending distance, with DistanceMiles attached.
	FindWithinRadius(f EventFilter, lat, lng, radiusMeters float64, limit int) ([]models.Event, error)
	// FindInPerson selects in-person events matching an exact
	// (case-insensitive) city or an exact zip code.
	FindInPerson(f EventFilter, city, zipCode string, limit int) ([]models.Event, error)
	// FindOnline selects online events matching the filter.
	FindOnline(f EventFilter, limit int) ([]models.Event, error)
	// FindUpcoming returns non-cancelled future events with attendees
	// preloaded, soonest first.
	FindUpcoming(limit int) ([]models.Event, error)
	// FindBetween returns non-cancelled events dated within [from, to).
	FindBetween(from, to time.Time, limit int) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindByID(id string) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Host").Preload("Attendees").First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// applyFilter translates an EventFilter into WHERE clauses.
func applyFilter(query *gorm.DB, f EventFilter) *gorm.DB {
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.LocationType != "" {
		query = query.Where("location_type = ?", f.LocationType)
	}
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.HostedBy != "" {
		query = query.Where("host_id = ?", f.HostedBy)
	}
	if f.Upcoming {
		query = query.Where("date_and_time > ?", time.Now())
	}
	if f.Past {
		query = query.Where("date_and_time < ?", time.Now())
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)",
			like, like, like)
	}
	return query
}

func (r *eventRepository) Find(f EventFilter, offset, limit int) ([]models.Event, int64, error) {
	query := applyFilter(r.db.Model(&models.Event{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := query.Preload("Host").
		Order("date_and_time ASC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	return events, total, err
}

// eventWithDistance lets a single query return events together with the
// computed spherical distance.
type eventWithDistance struct {
	models.Event
	DistanceMeters float64
}

func (r *eventRepository) FindWithinRadius(f EventFilter, lat, lng, radiusMeters float64, limit int) ([]models.Event, error) {
	// POINT takes longitude first, same as the GeoJSON encoding.
	var rows []eventWithDistance
	query := applyFilter(r.db.Model(&models.Event{}), f).
		Select("events.*, ST_Distance_Sphere(POINT(location_lng, location_lat), POINT(?, ?)) AS distance_meters", lng, lat).
		Where("location_type = ?", models.LocationTypeInPerson).
		Where("location_lat IS NOT NULL AND location_lng IS NOT NULL").
		Where("ST_Distance_Sphere(POINT(location_lng, location_lat), POINT(?, ?)) <= ?", lng, lat, radiusMeters).
		Order("distance_meters ASC").
		Limit(limit)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]models.Event, len(rows))
	for i, row := range rows {
		event := row.Event
		miles := utils.MetersToMiles(row.DistanceMeters)
		event.DistanceMiles = &miles
		events[i] = event
	}
	return events, nil
}

func (r *eventRepository) FindInPerson(f EventFilter, city, zipCode string, limit int) ([]models.Event, error) {
	query := applyFilter(r.db.Model(&models.Event{}), f).
		Where("location_type = ?", models.LocationTypeInPerson)

	if city != "" {
		// Exact match, not substring: "Seattle" must not match "New Seattle".
		query = query.Where("LOWER(city) = LOWER(?)", city)
	} else if zipCode != "" {
		query = query.Where("zip_code = ?", zipCode)
	}

	var events []models.Event
	err := query.Preload("Host").
		Order("date_and_time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindOnline(f EventFilter, limit int) ([]models.Event, error) {
	var events []models.Event
	err := applyFilter(r.db.Model(&models.Event{}), f).
		Where("location_type = ?", models.LocationTypeOnline).
		Preload("Host").
		Order("date_and_time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindUpcoming(limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Attendees").
		Where("status != ?", models.EventStatusCancelled).
		Where("date_and_time > ?", time.Now()).
		Order("date_and_time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindBetween(from, to time.Time, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Attendees").
		Where("status != ?", models.EventStatusCancelled).
		Where("date_and_time >= ? AND date_and_time < ?", from, to).
		Order("date_and_time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
