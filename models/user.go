package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string      `json:"id" gorm:"primaryKey;size:191"`
	Name          string      `json:"name" gorm:"not null;size:255"`
	Handle        string      `json:"handle" gorm:"uniqueIndex;not null;size:50"` // Added for @username functionality
	Email         string      `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string      `json:"-" gorm:"not null;size:255"`
	EmailVerified bool        `json:"email_verified" gorm:"default:false"`
	Avatar        *string     `json:"avatar" gorm:"size:500"`
	Bio           string      `json:"bio" gorm:"size:500"`
	Interests     StringSlice `json:"interests" gorm:"type:json"`
	// Home location used for proximity scoring; both nil when the user
	// never shared a location.
	LocationLat *float64  `json:"location_lat"`
	LocationLng *float64  `json:"location_lng"`
	City        string    `json:"city" gorm:"size:100"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	HostedEvents  []Event       `json:"hosted_events,omitempty" gorm:"foreignKey:HostID"`
	CreatedGroups []Group       `json:"created_groups,omitempty" gorm:"foreignKey:CreatorID"`
	Memberships   []GroupMember `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
}

// HasLocation reports whether the user shared a usable home location.
func (u *User) HasLocation() bool {
	return u.LocationLat != nil && u.LocationLng != nil
}

// GenerateHandleFromName creates a unique handle from the user's name
func GenerateHandleFromName(name string) string {
	// Convert to lowercase and replace spaces with underscores
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	// Remove special characters
	handle = strings.ReplaceAll(handle, ".", "")
	handle = strings.ReplaceAll(handle, "-", "_")
	return handle
}
