package services

import (
	"context"
	"log"
	"strings"

	"FreelanceHub/server/internal/models"
	"FreelanceHub/server/internal/storage"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// previewLength is the denormalized conversation preview cap, in runes.
const previewLength = 100

type PostMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
	ReplyToID      string
	Attachments    []string
}

type MessageService interface {
	PostMessage(ctx context.Context, input PostMessageInput) (*models.Message, error)
	SoftDeleteMessage(ctx context.Context, conversationID, messageID, requesterID string) error
	// ListMessagesAudit returns a chronological page including soft-deleted
	// rows. Raw audit path; no read acknowledgement happens here.
	ListMessagesAudit(ctx context.Context, conversationID string, page, limit int) ([]models.Message, error)
}

type messageService struct {
	messages      storage.MessageStore
	conversations storage.ConversationStore
	UserService   *UserService
	notifications NotificationService
	clock         clockwork.Clock
}

func NewMessageService(messages storage.MessageStore, conversations storage.ConversationStore, userService *UserService, notifications NotificationService, clock clockwork.Clock) *messageService {
	return &messageService{
		messages:      messages,
		conversations: conversations,
		UserService:   userService,
		notifications: notifications,
		clock:         clock,
	}
}

func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength])
}

func (ms *messageService) PostMessage(ctx context.Context, input PostMessageInput) (*models.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.ErrInvalidArgument
	}

	participant, err := ms.conversations.GetParticipant(ctx, input.ConversationID, input.SenderID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrForbidden
		}
		return nil, err
	}
	if !participant.IsActive {
		return nil, models.ErrForbidden
	}

	var replyTo *string
	if input.ReplyToID != "" {
		// the referenced message must live in the same conversation
		if _, err := ms.messages.GetByID(ctx, input.ConversationID, input.ReplyToID); err != nil {
			if err == models.ErrNotFound {
				return nil, models.ErrInvalidArgument
			}
			return nil, err
		}
		replyTo = &input.ReplyToID
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		Content:        input.Content,
		ReplyToID:      replyTo,
		Attachments:    input.Attachments,
		CreatedAt:      ms.clock.Now().UTC(),
	}
	preview := truncatePreview(input.Content)

	if err := ms.messages.Append(ctx, msg, preview); err != nil {
		return nil, err
	}

	if sender, err := ms.UserService.GetUserById(ctx, input.SenderID); err == nil {
		msg.Sender = sender
	} else {
		log.Printf("Error resolving sender %s for message %s: %v", input.SenderID, msg.ID, err)
	}

	ms.notifyParticipants(ctx, msg, preview)
	return msg, nil
}

// notifyParticipants fans out new_message notifications to the other active,
// non-muted participants. Failures never reach the sender.
func (ms *messageService) notifyParticipants(ctx context.Context, msg *models.Message, preview string) {
	participants, err := ms.conversations.ListActiveParticipants(ctx, msg.ConversationID)
	if err != nil {
		log.Printf("Error listing participants for conversation %s: %v", msg.ConversationID, err)
		return
	}
	for _, p := range participants {
		if p.UserID == msg.SenderID || p.IsMuted {
			continue
		}
		ms.notifications.NotifyNewMessage(ctx, p.UserID, msg.SenderID, msg.ConversationID, preview)
	}
}

func (ms *messageService) SoftDeleteMessage(ctx context.Context, conversationID, messageID, requesterID string) error {
	msg, err := ms.messages.GetByID(ctx, conversationID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return models.ErrForbidden
	}
	if msg.IsDeleted {
		return nil
	}
	// unread counters and conversation preview are left as-is on delete
	return ms.messages.SoftDelete(ctx, conversationID, messageID, ms.clock.Now().UTC())
}

func (ms *messageService) ListMessagesAudit(ctx context.Context, conversationID string, page, limit int) ([]models.Message, error) {
	offset := (page - 1) * limit
	return ms.messages.ListPage(ctx, conversationID, limit, offset, true)
}
