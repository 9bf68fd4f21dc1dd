package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationTypeComment       NotificationType = "comment"
	NotificationTypeRSVP          NotificationType = "rsvp"
	NotificationTypeEventUpdate   NotificationType = "event_update"
	NotificationTypeEventCancel   NotificationType = "event_cancelled"
	NotificationTypeEventReminder NotificationType = "event_reminder"
	NotificationTypeGroupJoin     NotificationType = "group_join"
)

type Notification struct {
	ID           string           `json:"id" gorm:"primaryKey;size:191"`
	Type         NotificationType `json:"type" gorm:"not null;size:50"`
	ActorUserID  string           `json:"actor_user_id" gorm:"not null;size:191"`  // Who performed the action
	TargetUserID string           `json:"target_user_id" gorm:"not null;size:191"` // Who receives the notification
	EventID      *string          `json:"event_id" gorm:"size:191"`                // Optional: related event
	GroupID      *string          `json:"group_id" gorm:"size:191"`                // Optional: related group
	CommentID    *string          `json:"comment_id" gorm:"size:191"`              // Optional: related comment
	IsRead       bool             `json:"is_read" gorm:"default:false"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relationships
	ActorUser  User   `json:"actor_user" gorm:"foreignKey:ActorUserID"`
	TargetUser User   `json:"target_user" gorm:"foreignKey:TargetUserID"`
	Event      *Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}

// NotificationResponse represents the API response for notifications
type NotificationResponse struct {
	ID        string             `json:"id"`
	Type      NotificationType   `json:"type"`
	ActorUser NotificationUser   `json:"actor_user"`
	Event     *NotificationEvent `json:"event,omitempty"`
	IsRead    bool               `json:"is_read"`
	CreatedAt time.Time          `json:"created_at"`
	Message   string             `json:"message"`
	TimeAgo   string             `json:"time_ago"`
}

type NotificationUser struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Handle string  `json:"handle"`
	Avatar *string `json:"avatar"`
}

type NotificationEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	DateAndTime time.Time `json:"date_and_time"`
}

// NotificationStats represents notification statistics
type NotificationStats struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}

// PaginatedNotifications represents paginated notification response
type PaginatedNotifications struct {
	Notifications []NotificationResponse `json:"notifications"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Total         int64                  `json:"total"`
	HasMore       bool                   `json:"has_more"`
	TotalPages    int                    `json:"total_pages"`
}

// GetNotificationMessage returns a human-readable message for the notification
func (n *Notification) GetNotificationMessage() string {
	switch n.Type {
	case NotificationTypeComment:
		return "commented on your event"
	case NotificationTypeRSVP:
		return "is attending your event"
	case NotificationTypeEventUpdate:
		return "updated an event you're attending"
	case NotificationTypeEventCancel:
		return "cancelled an event you're attending"
	case NotificationTypeEventReminder:
		return "your event is coming up soon"
	case NotificationTypeGroupJoin:
		return "joined your group"
	default:
		return "interacted with your content"
	}
}

// GetTimeAgo returns a human-readable time difference
func (n *Notification) GetTimeAgo() string {
	now := time.Now()
	diff := now.Sub(n.CreatedAt)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / (24 * 7))
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / (24 * 30))
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// ToResponse converts Notification to NotificationResponse
func (n *Notification) ToResponse() NotificationResponse {
	response := NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		Message:   n.GetNotificationMessage(),
		TimeAgo:   n.GetTimeAgo(),
		ActorUser: NotificationUser{
			ID:     n.ActorUser.ID,
			Name:   n.ActorUser.Name,
			Handle: n.ActorUser.Handle,
			Avatar: n.ActorUser.Avatar,
		},
	}

	// Add event information if present
	if n.Event != nil {
		response.Event = &NotificationEvent{
			ID:          n.Event.ID,
			Title:       n.Event.Title,
			DateAndTime: n.Event.DateAndTime,
		}
	}

	return response
}
