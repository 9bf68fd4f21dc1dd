package models

import (
	"time"
)

type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"not null;index"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Body      string    `json:"body" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"user" gorm:"foreignKey:UserID"`
}
