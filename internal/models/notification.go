package models

import (
	"time"
)

const (
	NotificationTypeNewMessage              = "new_message"
	NotificationTypeNewApplication          = "new_application"
	NotificationTypeApplicationStatusChange = "application_status_change"
	NotificationTypeVerification            = "verification"
	NotificationTypeSystem                  = "system"
)

type Notification struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	Type          string     `json:"notification_type" db:"notification_type"`
	Title         string     `json:"title" db:"title"`
	Content       string     `json:"content" db:"content"`
	ActionURL     *string    `json:"action_url,omitempty" db:"action_url"`
	ActionText    *string    `json:"action_text,omitempty" db:"action_text"`
	ReferenceType *string    `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID   *string    `json:"reference_id,omitempty" db:"reference_id"`
	FromUserID    *string    `json:"from_user_id,omitempty" db:"from_user_id"`
	IsRead        bool       `json:"is_read" db:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
