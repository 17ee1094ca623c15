package models

import (
	"time"
)

type Message struct {
	ID             string     `json:"id" db:"id"`
	Seq            int64      `json:"-" db:"seq"`
	ConversationID string     `json:"conversation_id" db:"conversation_id"`
	SenderID       string     `json:"sender_id" db:"sender_id"`
	Content        string     `json:"content" db:"content"`
	ReplyToID      *string    `json:"reply_to_id,omitempty" db:"reply_to_id"`
	Attachments    []string   `json:"attachments,omitempty" db:"attachments"`
	IsDeleted      bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	Sender         *User      `json:"sender,omitempty"`
}
