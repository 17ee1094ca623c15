package services

import (
	"context"
	"log"

	"FreelanceHub/server/internal/models"
	"FreelanceHub/server/internal/storage"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type StartDirectInput struct {
	CallerID        string
	RecipientID     string
	Content         string
	Subject         string
	LinkedProjectID string
	LinkedJobID     string
}

// ConversationView is the response shape of GetConversation: metadata, one
// chronological message page, and all active participants.
type ConversationView struct {
	Conversation models.Conversation              `json:"conversation"`
	Messages     []models.Message                 `json:"messages"`
	Participants []models.ConversationParticipant `json:"participants"`
	Users        []models.User                    `json:"users"`
}

type ConversationService interface {
	ListConversations(ctx context.Context, userID string, page, limit int) ([]models.ConversationSummary, error)
	// GetConversation requires an active participant row. A missing
	// conversation and a non-member caller both yield ErrForbidden; the two
	// causes are deliberately indistinguishable to the caller. Viewing the
	// conversation resets the caller's unread counter.
	GetConversation(ctx context.Context, userID, conversationID string, page, limit int) (*ConversationView, error)
	StartOrAppendDirect(ctx context.Context, input StartDirectInput) (*models.Conversation, *models.Message, error)
	SetMuted(ctx context.Context, userID, conversationID string, muted bool) error
	LeaveConversation(ctx context.Context, userID, conversationID string) error
}

type conversationService struct {
	conversations  storage.ConversationStore
	MessageService MessageService
	UserService    *UserService
	messages       storage.MessageStore
	clock          clockwork.Clock
}

func NewConversationService(conversations storage.ConversationStore, messages storage.MessageStore, messageService MessageService, userService *UserService, clock clockwork.Clock) *conversationService {
	return &conversationService{
		conversations:  conversations,
		MessageService: messageService,
		UserService:    userService,
		messages:       messages,
		clock:          clock,
	}
}

// directKey is the unordered participant pair in canonical form. The store
// holds a uniqueness constraint on it for active direct conversations, which
// closes the concurrent first-message race.
func directKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

func (cs *conversationService) ListConversations(ctx context.Context, userID string, page, limit int) ([]models.ConversationSummary, error) {
	offset := (page - 1) * limit
	summaries, err := cs.conversations.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range summaries {
		participants, err := cs.conversations.ListActiveParticipants(ctx, summaries[i].ID)
		if err != nil {
			log.Printf("Error getting participants for conversation %s: %v", summaries[i].ID, err)
			continue
		}
		others := make([]models.User, 0, len(participants))
		for _, p := range participants {
			if p.UserID == userID {
				continue
			}
			user, err := cs.UserService.GetUserById(ctx, p.UserID)
			if err != nil {
				log.Printf("Error resolving participant %s: %v", p.UserID, err)
				continue
			}
			others = append(others, *user)
		}
		summaries[i].Participants = others
	}
	return summaries, nil
}

func (cs *conversationService) GetConversation(ctx context.Context, userID, conversationID string, page, limit int) (*ConversationView, error) {
	participant, err := cs.conversations.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrForbidden
		}
		return nil, err
	}
	if !participant.IsActive {
		return nil, models.ErrForbidden
	}

	conv, err := cs.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrForbidden
		}
		return nil, err
	}

	offset := (page - 1) * limit
	messages, err := cs.messages.ListPage(ctx, conversationID, limit, offset, false)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		sender, err := cs.UserService.GetUserById(ctx, messages[i].SenderID)
		if err != nil {
			continue
		}
		messages[i].Sender = sender
	}

	participants, err := cs.conversations.ListActiveParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(participants))
	for _, p := range participants {
		user, err := cs.UserService.GetUserById(ctx, p.UserID)
		if err != nil {
			continue
		}
		users = append(users, *user)
	}

	// viewing is the read acknowledgement: zero the caller's counter
	if err := cs.conversations.MarkRead(ctx, conversationID, userID, cs.clock.Now().UTC()); err != nil {
		return nil, err
	}

	return &ConversationView{
		Conversation: *conv,
		Messages:     messages,
		Participants: participants,
		Users:        users,
	}, nil
}

func (cs *conversationService) StartOrAppendDirect(ctx context.Context, input StartDirectInput) (*models.Conversation, *models.Message, error) {
	if input.RecipientID == "" || input.RecipientID == input.CallerID {
		return nil, nil, models.ErrInvalidArgument
	}
	if _, err := cs.UserService.GetUserById(ctx, input.RecipientID); err != nil {
		return nil, nil, err
	}

	conv, err := cs.conversations.FindDirectBetween(ctx, input.CallerID, input.RecipientID)
	if err != nil && err != models.ErrNotFound {
		return nil, nil, err
	}

	if conv == nil {
		conv, err = cs.createDirect(ctx, input)
		if err != nil {
			return nil, nil, err
		}
	}

	msg, err := cs.MessageService.PostMessage(ctx, PostMessageInput{
		ConversationID: conv.ID,
		SenderID:       input.CallerID,
		Content:        input.Content,
	})
	if err != nil {
		return nil, nil, err
	}
	return conv, msg, nil
}

func (cs *conversationService) createDirect(ctx context.Context, input StartDirectInput) (*models.Conversation, error) {
	now := cs.clock.Now().UTC()
	conv := &models.Conversation{
		ID:              uuid.New().String(),
		Type:            models.ConversationTypeDirect,
		Subject:         optional(input.Subject),
		LinkedProjectID: optional(input.LinkedProjectID),
		LinkedJobID:     optional(input.LinkedJobID),
		Status:          models.ConversationStatusActive,
		CreatedAt:       now,
	}
	participants := []models.ConversationParticipant{
		{ConversationID: conv.ID, UserID: input.CallerID, Role: models.ParticipantRoleOwner, IsActive: true, JoinedAt: now},
		{ConversationID: conv.ID, UserID: input.RecipientID, Role: models.ParticipantRoleMember, IsActive: true, JoinedAt: now},
	}

	err := cs.conversations.CreateDirect(ctx, conv, directKey(input.CallerID, input.RecipientID), participants)
	if err == models.ErrConflict {
		// another caller created the pair's conversation first; converge on it
		log.Printf("Direct conversation for pair %s already exists, reusing", directKey(input.CallerID, input.RecipientID))
		return cs.conversations.FindDirectBetween(ctx, input.CallerID, input.RecipientID)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (cs *conversationService) SetMuted(ctx context.Context, userID, conversationID string, muted bool) error {
	participant, err := cs.conversations.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if err == models.ErrNotFound {
			return models.ErrForbidden
		}
		return err
	}
	if !participant.IsActive {
		return models.ErrForbidden
	}
	return cs.conversations.SetMuted(ctx, conversationID, userID, muted)
}

func (cs *conversationService) LeaveConversation(ctx context.Context, userID, conversationID string) error {
	participant, err := cs.conversations.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if err == models.ErrNotFound {
			return models.ErrForbidden
		}
		return err
	}
	if !participant.IsActive {
		return models.ErrForbidden
	}
	if err := cs.conversations.Deactivate(ctx, conversationID, userID); err != nil {
		return err
	}

	// once nobody is left the conversation is archived, which releases the
	// direct key so the same pair can start over
	remaining, err := cs.conversations.ListActiveParticipants(ctx, conversationID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return cs.conversations.Archive(ctx, conversationID)
	}
	return nil
}
