package models

import (
	"time"
)

type Group struct {
	ID           string      `json:"id" gorm:"primaryKey;size:191"`
	Name         string      `json:"name" gorm:"not null;size:255"`
	Description  string      `json:"description" gorm:"type:text"`
	Category     string      `json:"category" gorm:"size:100;index"`
	City         string      `json:"city" gorm:"size:100"`
	Tags         StringSlice `json:"tags" gorm:"type:json"`
	CreatorID    string      `json:"creator_id" gorm:"not null;size:191;index"`
	MembersCount int         `json:"members_count" gorm:"default:0"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Creator User          `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Members []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

// Group member roles.
const (
	GroupRoleOwner  = "owner"
	GroupRoleMember = "member"
)

type GroupMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupID   string    `json:"group_id" gorm:"not null;size:191;uniqueIndex:uk_group_members_group_user"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_group_members_group_user"`
	Role      string    `json:"role" gorm:"not null;size:20;default:'member'"`
	CreatedAt time.Time `json:"created_at"`

	Group Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
