package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/repositories"
	"gatherly-api/services"
	"gatherly-api/utils"
)

type EventController struct {
	db            *gorm.DB
	discovery     *services.DiscoveryService
	emailService  *services.EmailService
	notifications *NotificationController
}

func NewEventController(db *gorm.DB, discovery *services.DiscoveryService, emailService *services.EmailService, notifications *NotificationController) *EventController {
	return &EventController{
		db:            db,
		discovery:     discovery,
		emailService:  emailService,
		notifications: notifications,
	}
}

type CreateEventRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description" binding:"required"`
	Category     string    `json:"category" binding:"required"`
	EventType    string    `json:"event_type"`
	LocationType string    `json:"location_type" binding:"required,oneof=online in-person"`
	LocationName string    `json:"location_name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      string    `json:"zip_code"`
	LocationLat  *float64  `json:"location_lat"`
	LocationLng  *float64  `json:"location_lng"`
	DateAndTime  time.Time `json:"date_and_time" binding:"required"`
	MaxAttendees int       `json:"max_attendees" binding:"omitempty,min=2"`
	Tags         []string  `json:"tags"`
	ImageUrls    []string  `json:"image_urls"`
}

// parseEventFilter reads the shared non-location filters off the query string.
func parseEventFilter(c *gin.Context) repositories.EventFilter {
	return repositories.EventFilter{
		Category:     c.Query("category"),
		LocationType: c.Query("locationType"),
		EventType:    c.Query("eventType"),
		Status:       c.Query("status"),
		HostedBy:     c.Query("hostedBy"),
		Upcoming:     c.Query("upcoming") == "true",
		Past:         c.Query("past") == "true",
	}
}

// parseLocationSelector reads the optional geo/city/zip selector. A geo
// selector needs lat, lng and a radius together; partial triples fall
// through to city/zip.
func parseLocationSelector(c *gin.Context) services.LocationSelector {
	loc := services.LocationSelector{
		City:    c.Query("city"),
		ZipCode: c.Query("zipCode"),
	}

	radiusParam := c.Query("radius")
	if radiusParam == "" {
		radiusParam = c.Query("radiusMiles")
	}

	if lat, err := strconv.ParseFloat(c.Query("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(c.Query("lng"), 64); err == nil {
			if radius, err := strconv.ParseFloat(radiusParam, 64); err == nil && radius > 0 {
				// ToGeoPoint rejects NaN/Inf coordinates.
				if point := utils.ToGeoPoint(lat, lng); point != nil {
					loc.Lat = &lat
					loc.Lng = &lng
					loc.RadiusMiles = &radius
				}
			}
		}
	}

	return loc
}

func (ec *EventController) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := parseEventFilter(c)
	loc := parseLocationSelector(c)

	result, err := ec.discovery.FilterEvents(filter, loc, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":     result.Events,
		"pagination": result.Pagination,
	})
}

func (ec *EventController) SearchEvents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := parseEventFilter(c)
	loc := parseLocationSelector(c)

	result, err := ec.discovery.SearchEvents(query, filter, loc, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":     result.Events,
		"pagination": result.Pagination,
	})
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate event date is in the future
	if req.DateAndTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event date must be in the future"})
		return
	}

	// In-person events need a resolvable location
	if req.LocationType == models.LocationTypeInPerson && req.City == "" && req.ZipCode == "" && req.LocationLat == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "In-person events need a city, zip code or coordinates"})
		return
	}

	if req.LocationLat != nil && req.LocationLng != nil {
		if utils.ToGeoPoint(*req.LocationLat, *req.LocationLng) == nil ||
			!utils.IsValidLatitude(*req.LocationLat) || !utils.IsValidLongitude(*req.LocationLng) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
	}

	// Get host info
	var host models.User
	if err := ec.db.First(&host, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	event := models.Event{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		EventType:      req.EventType,
		LocationType:   req.LocationType,
		LocationName:   req.LocationName,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		LocationLat:    req.LocationLat,
		LocationLng:    req.LocationLng,
		DateAndTime:    req.DateAndTime,
		MaxAttendees:   req.MaxAttendees,
		AttendeesCount: 1, // Host is automatically an attendee
		Status:         models.EventStatusUpcoming,
		HostID:         userID,
		HostName:       host.Name,
		Tags:           models.StringSlice(req.Tags),
		ImageUrls:      models.StringSlice(req.ImageUrls),
	}

	if err := ec.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	// Add host as attendee
	attendee := models.EventAttendee{
		EventID: event.ID,
		UserID:  userID,
	}
	ec.db.Create(&attendee)

	c.JSON(http.StatusCreated, event)
}

func (ec *EventController) GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.Preload("Host").Preload("Attendees").Preload("Attendees.User").
		First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	// Status follows the event date unless cancelled
	event.Status = event.EffectiveStatus(time.Now())

	event.Host.Password = ""
	for i := range event.Attendees {
		event.Attendees[i].User.Password = ""
	}
	c.JSON(http.StatusOK, event)
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ? AND host_id = ?", eventID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found or access denied"})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate event date is in the future
	if req.DateAndTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event date must be in the future"})
		return
	}

	// Check if reducing capacity would make event invalid
	if req.MaxAttendees > 0 && req.MaxAttendees < event.AttendeesCount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot reduce max attendees below current count"})
		return
	}

	updates := map[string]interface{}{
		"title":         req.Title,
		"description":   req.Description,
		"category":      req.Category,
		"event_type":    req.EventType,
		"location_type": req.LocationType,
		"location_name": req.LocationName,
		"address":       req.Address,
		"city":          req.City,
		"state":         req.State,
		"zip_code":      req.ZipCode,
		"location_lat":  req.LocationLat,
		"location_lng":  req.LocationLng,
		"date_and_time": req.DateAndTime,
		"max_attendees": req.MaxAttendees,
		"tags":          models.StringSlice(req.Tags),
		"image_urls":    models.StringSlice(req.ImageUrls),
	}

	if err := ec.db.Model(&event).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	// Notify attendees about the change
	go ec.notifications.NotifyEventAttendees(userID, eventID, models.NotificationTypeEventUpdate)

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully"})
}

func (ec *EventController) CancelEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ? AND host_id = ?", eventID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found or access denied"})
		return
	}

	if event.Status == models.EventStatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event is already cancelled"})
		return
	}

	if err := ec.db.Model(&event).Update("status", models.EventStatusCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel event"})
		return
	}

	go ec.notifications.NotifyEventAttendees(userID, eventID, models.NotificationTypeEventCancel)

	c.JSON(http.StatusOK, gin.H{"message": "Event cancelled successfully"})
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ? AND host_id = ?", eventID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found or access denied"})
		return
	}

	// Delete attendees and comments first
	ec.db.Where("event_id = ?", eventID).Delete(&models.EventAttendee{})
	ec.db.Where("event_id = ?", eventID).Delete(&models.Comment{})

	// Delete the event
	if err := ec.db.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

func (ec *EventController) JoinEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event

	// The capacity check runs inside the transaction so concurrent joins
	// can't push attendees past max_attendees.
	err := ec.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			return err
		}

		if event.Status == models.EventStatusCancelled {
			return errors.New("event is cancelled")
		}

		if event.DateAndTime.Before(time.Now()) {
			return errors.New("cannot join past events")
		}

		// Check if already joined
		var existing models.EventAttendee
		if err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error; err == nil {
			return errors.New("already joined this event")
		}

		var count int64
		if err := tx.Model(&models.EventAttendee{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		if event.MaxAttendees > 0 && count >= int64(event.MaxAttendees) {
			return errors.New("event is full")
		}

		attendee := models.EventAttendee{
			EventID: eventID,
			UserID:  userID,
		}
		if err := tx.Create(&attendee).Error; err != nil {
			return err
		}

		return tx.Model(&event).Update("attendees_count", count+1).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Confirmation email and host notification happen off the request path
	go func() {
		var user models.User
		if err := ec.db.First(&user, "id = ?", userID).Error; err != nil {
			return
		}
		if err := ec.emailService.SendRSVPConfirmationEmail(user.Email, user.Name, &event); err != nil {
			fmt.Printf("Failed to send RSVP confirmation email: %v\n", err)
		}
	}()
	if event.HostID != userID {
		go ec.notifications.CreateEventNotification(userID, event.HostID, eventID, models.NotificationTypeRSVP)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined event"})
}

func (ec *EventController) LeaveEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if event.HostID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Host cannot leave their own event"})
		return
	}

	var attendee models.EventAttendee
	if err := ec.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&attendee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not attending this event"})
		return
	}

	if err := ec.db.Delete(&attendee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave event"})
		return
	}

	// Update attendee count
	ec.db.Model(&event).UpdateColumn("attendees_count", gorm.Expr("attendees_count - ?", 1))

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left event"})
}

func (ec *EventController) GetJoinedEvents(c *gin.Context) {
	userID := c.GetString("user_id")

	var attendees []models.EventAttendee
	if err := ec.db.Preload("Event").Preload("Event.Host").Where("user_id = ?", userID).Find(&attendees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch joined events"})
		return
	}

	events := make([]models.Event, 0, len(attendees))
	for _, attendee := range attendees {
		attendee.Event.Host.Password = ""
		events = append(events, attendee.Event)
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (ec *EventController) GetCreatedEvents(c *gin.Context) {
	userID := c.GetString("user_id")

	var events []models.Event
	if err := ec.db.Preload("Attendees").Where("host_id = ?", userID).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch created events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
