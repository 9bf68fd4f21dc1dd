package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gatherly-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventAttendee{},
		&models.Group{},
		&models.GroupMember{},
		&models.Comment{},
		&models.Notification{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Add custom indexes for better query performance
	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Composite index for the discovery listing (status + date range scans)
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_status_date ON events(status, date_and_time)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events status/date: %v\n", err)
	}

	// City lookups are case-insensitive exact matches
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_city_date ON events(city, date_and_time)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events city: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_category_date ON events(category, date_and_time)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events category: %v\n", err)
	}

	// Notification feed ordering
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_target_created ON notifications(target_user_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for notifications: %v\n", err)
	}

	return nil
}

// SeedData can be used to populate the database with initial data for development/testing
func SeedData(db *gorm.DB) error {
	// Check if we already have users
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)

	if userCount > 0 {
		fmt.Println("Database already has data, skipping seed")
		return nil
	}

	seattleLat, seattleLng := 47.6062, -122.3321
	portlandLat, portlandLng := 45.5152, -122.6784

	// Create sample users for testing
	testUsers := []models.User{
		{
			ID:            "user-1",
			Name:          "John Doe",
			Handle:        "john_doe",
			Email:         "john@example.com",
			Password:      "$2a$10$dummy", // This should be properly hashed in real scenarios
			EmailVerified: true,
			Interests:     models.StringSlice{"Tech", "Hiking"},
			LocationLat:   &seattleLat,
			LocationLng:   &seattleLng,
			City:          "Seattle",
		},
		{
			ID:            "user-2",
			Name:          "Jane Smith",
			Handle:        "jane_smith",
			Email:         "jane@example.com",
			Password:      "$2a$10$dummy",
			EmailVerified: true,
			Interests:     models.StringSlice{"Music", "Food"},
			LocationLat:   &portlandLat,
			LocationLng:   &portlandLng,
			City:          "Portland",
		},
	}

	for _, user := range testUsers {
		if err := db.Create(&user).Error; err != nil {
			fmt.Printf("Warning: Could not create test user %s: %v\n", user.Handle, err)
		}
	}

	// Create sample events for testing
	testEvents := []models.Event{
		{
			ID:             "event-1",
			Title:          "Seattle Go Meetup",
			Description:    "Monthly meetup for Go developers of all levels.",
			Category:       "Technology",
			EventType:      "meetup",
			LocationType:   models.LocationTypeInPerson,
			LocationName:   "Downtown Community Hall",
			City:           "Seattle",
			State:          "WA",
			ZipCode:        "98101",
			LocationLat:    &seattleLat,
			LocationLng:    &seattleLng,
			DateAndTime:    time.Now().Add(5 * 24 * time.Hour),
			MaxAttendees:   50,
			AttendeesCount: 1,
			Status:         models.EventStatusUpcoming,
			HostID:         "user-1",
			HostName:       "John Doe",
			Tags:           models.StringSlice{"go", "programming"},
		},
		{
			ID:             "event-2",
			Title:          "Online Jazz Listening Party",
			Description:    "Stream and discuss classic jazz records together.",
			Category:       "Music",
			EventType:      "social",
			LocationType:   models.LocationTypeOnline,
			DateAndTime:    time.Now().Add(2 * 24 * time.Hour),
			AttendeesCount: 1,
			Status:         models.EventStatusUpcoming,
			HostID:         "user-2",
			HostName:       "Jane Smith",
			Tags:           models.StringSlice{"jazz", "listening"},
		},
	}

	for _, event := range testEvents {
		if err := db.Create(&event).Error; err != nil {
			fmt.Printf("Warning: Could not create test event %s: %v\n", event.Title, err)
		}
	}

	fmt.Println("Database seeded with test data")
	return nil
}
