package models

import (
	"time"
)

const (
	ConversationTypeDirect = "direct"
	ConversationTypeGroup  = "group"

	ConversationStatusActive   = "active"
	ConversationStatusArchived = "archived"
)

const (
	ParticipantRoleOwner  = "owner"
	ParticipantRoleMember = "member"
)

type Conversation struct {
	ID                 string     `json:"id" db:"id"`
	Type               string     `json:"type" db:"type"`
	Subject            *string    `json:"subject,omitempty" db:"subject"`
	LinkedProjectID    *string    `json:"linked_project_id,omitempty" db:"linked_project_id"`
	LinkedJobID        *string    `json:"linked_job_id,omitempty" db:"linked_job_id"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	LastMessagePreview string     `json:"last_message_preview" db:"last_message_preview"`
	Status             string     `json:"status" db:"status"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

type ConversationParticipant struct {
	ConversationID string     `json:"conversation_id" db:"conversation_id"`
	UserID         string     `json:"user_id" db:"user_id"`
	Role           string     `json:"role" db:"role"`
	UnreadCount    int        `json:"unread_count" db:"unread_count"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty" db:"last_read_at"`
	IsMuted        bool       `json:"is_muted" db:"is_muted"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	JoinedAt       time.Time  `json:"joined_at" db:"joined_at"`
}

// ConversationSummary is a conversation as it appears in the caller's inbox:
// the conversation row plus the caller's own unread/mute state and the other
// active participants.
type ConversationSummary struct {
	Conversation
	UnreadCount  int    `json:"unread_count"`
	IsMuted      bool   `json:"is_muted"`
	Participants []User `json:"participants"`
}
