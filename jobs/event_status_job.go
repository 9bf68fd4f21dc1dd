package jobs

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"gatherly-api/models"
)

// EventStatusJob periodically derives event status from the event date:
// upcoming events whose date has passed become past. Cancelled events are
// never touched.
type EventStatusJob struct {
	db     *gorm.DB
	ticker *time.Ticker
	done   chan bool
}

// NewEventStatusJob creates a new event status job
func NewEventStatusJob(db *gorm.DB, interval time.Duration) *EventStatusJob {
	return &EventStatusJob{
		db:     db,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the status derivation job
func (j *EventStatusJob) Start() {
	fmt.Println("Event status job started")

	go func() {
		// Run immediately on start
		j.refresh()

		// Then run on schedule
		for {
			select {
			case <-j.ticker.C:
				j.refresh()
			case <-j.done:
				fmt.Println("Event status job stopped")
				return
			}
		}
	}()
}

// Stop stops the job
func (j *EventStatusJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

// refresh performs the actual status update
func (j *EventStatusJob) refresh() {
	result := j.db.Model(&models.Event{}).
		Where("status = ?", models.EventStatusUpcoming).
		Where("date_and_time < ?", time.Now()).
		Update("status", models.EventStatusPast)

	if result.Error != nil {
		fmt.Printf("Error during event status refresh: %v\n", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		fmt.Printf("Event status refresh: %d events marked as past\n", result.RowsAffected)
	}
}
