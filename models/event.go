package models

import (
	"math"
	"time"
)

// Event status values. Status follows the event date unless the host
// cancelled the event explicitly.
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusPast      = "past"
	EventStatusCancelled = "cancelled"
)

// Location type values.
const (
	LocationTypeOnline   = "online"
	LocationTypeInPerson = "in-person"
)

type Event struct {
	ID           string  `json:"id" gorm:"primaryKey;size:191"`
	Title        string  `json:"title" gorm:"not null;size:255"`
	Description  string  `json:"description" gorm:"not null;type:text"`
	Category     string  `json:"category" gorm:"not null;size:100;index"`
	EventType    string  `json:"event_type" gorm:"size:50"`
	LocationType string  `json:"location_type" gorm:"not null;size:20;index"`
	LocationName string  `json:"location_name" gorm:"size:255"`
	Address      string  `json:"address" gorm:"size:500"`
	City         string  `json:"city" gorm:"size:100;index"`
	State        string  `json:"state" gorm:"size:100"`
	ZipCode      string  `json:"zip_code" gorm:"size:20;index"`
	LocationLat  *float64 `json:"location_lat"`
	LocationLng  *float64 `json:"location_lng"`
	DateAndTime  time.Time `json:"date_and_time" gorm:"not null;index"`
	MaxAttendees int       `json:"max_attendees"` // 0 = unlimited
	AttendeesCount int     `json:"attendees_count" gorm:"default:0"`
	Status         string  `json:"status" gorm:"not null;size:20;default:'upcoming';index"`
	HostID         string  `json:"host_id" gorm:"not null;size:191;index"`
	HostName       string  `json:"host_name" gorm:"not null;size:255"`
	Tags           StringSlice `json:"tags" gorm:"type:json"`
	ImageUrls      StringSlice `json:"image_urls" gorm:"type:json"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// DistanceMiles is filled in by geo-radius queries; never stored.
	DistanceMiles *float64 `json:"distance_miles,omitempty" gorm:"-"`

	Host      User            `json:"host,omitempty" gorm:"foreignKey:HostID"`
	Attendees []EventAttendee `json:"attendees,omitempty" gorm:"foreignKey:EventID"`
}

type EventAttendee struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_event_attendees_event_user"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_event_attendees_event_user"`
	CreatedAt time.Time `json:"created_at"`

	Event Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// HasCoordinates reports whether the event carries a usable geo position.
func (e *Event) HasCoordinates() bool {
	return e.LocationLat != nil && e.LocationLng != nil
}

// EffectiveStatus derives the status from the event date. Cancelled is
// sticky and never re-derived.
func (e *Event) EffectiveStatus(now time.Time) string {
	if e.Status == EventStatusCancelled {
		return EventStatusCancelled
	}
	if e.DateAndTime.Before(now) {
		return EventStatusPast
	}
	return EventStatusUpcoming
}

// DaysUntil returns the fractional number of days between now and the
// event date. Negative for past events.
func (e *Event) DaysUntil(now time.Time) float64 {
	return e.DateAndTime.Sub(now).Hours() / 24
}

// Velocity is the RSVP rate used by trending and recommendation ranking:
// attendee count divided by the days remaining, floored at one day so
// imminent events don't divide by zero.
func (e *Event) Velocity(now time.Time) float64 {
	return float64(e.AttendeesCount) / math.Max(1, e.DaysUntil(now))
}
