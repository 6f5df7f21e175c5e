package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationEnrollment = "ENROLLMENT"
	NotificationCompletion = "COURSE_COMPLETED"
)

// Notification is an in-app message shown to a user
type Notification struct {
	gorm.Model
	UserID     uint           `gorm:"not null;index" json:"userId"`
	Type       string         `gorm:"type:varchar(30);not null" json:"type"`
	Title      string         `json:"title"`
	Message    string         `gorm:"type:text" json:"message"`
	ActionText string         `json:"actionText"`
	Link       string         `json:"link"`
	ImageURL   string         `json:"imageUrl"`
	Data       datatypes.JSON `json:"data"`
	IsRead     bool           `gorm:"default:false" json:"isRead"`
	EmailSent  bool           `gorm:"default:false" json:"emailSent"`
}
