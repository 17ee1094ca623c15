package storage

import (
	"context"
	"time"

	"FreelanceHub/server/internal/models"
)

// ConversationStore persists conversations and their participant rows.
type ConversationStore interface {
	// CreateDirect inserts the conversation and both participant rows as one
	// transaction. Returns models.ErrConflict if an active direct conversation
	// for the same participant pair already exists.
	CreateDirect(ctx context.Context, conv *models.Conversation, directKey string, participants []models.ConversationParticipant) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// FindDirectBetween returns the active direct conversation both users are
	// active participants of, or models.ErrNotFound.
	FindDirectBetween(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// ListByUser returns active conversations the user actively participates
	// in, newest activity first, annotated with the user's own unread/mute state.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ConversationSummary, error)
	GetParticipant(ctx context.Context, conversationID, userID string) (*models.ConversationParticipant, error)
	ListActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error)
	// MarkRead zeroes the participant's unread counter and stamps last_read_at.
	MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error
	SetMuted(ctx context.Context, conversationID, userID string, muted bool) error
	// Deactivate soft-removes the participant; history stays intact.
	Deactivate(ctx context.Context, conversationID, userID string) error
	// Archive sets status=archived, releasing the conversation's direct key so
	// the participant pair can start over.
	Archive(ctx context.Context, conversationID string) error
}

// MessageStore is the append-only message log.
type MessageStore interface {
	// Append inserts the message, refreshes the conversation's last_message_at
	// and preview, and atomically increments unread_count for every other
	// active participant. All three writes are one transaction.
	Append(ctx context.Context, msg *models.Message, preview string) error
	GetByID(ctx context.Context, conversationID, messageID string) (*models.Message, error)
	// ListPage fetches a page newest-first and returns it in chronological
	// order. Soft-deleted messages are skipped unless includeDeleted is set.
	ListPage(ctx context.Context, conversationID string, limit, offset int, includeDeleted bool) ([]models.Message, error)
	SoftDelete(ctx context.Context, conversationID, messageID string, at time.Time) error
}

// NotificationStore persists per-recipient notification records.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteAllRead(ctx context.Context, userID string) error
}

// UserStore reads profile summaries owned by the identity service.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
