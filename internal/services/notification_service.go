package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"FreelanceHub/server/internal/models"
	"FreelanceHub/server/internal/storage"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"
)

// NotifyInput carries everything needed to address a single recipient.
type NotifyInput struct {
	RecipientID   string
	Type          string
	Title         string
	Content       string
	ActionURL     string
	ActionText    string
	ReferenceType string
	ReferenceID   string
	FromUserID    string
}

type NotificationService interface {
	// Notify is fire-and-forget: it never returns an error. A failed write is
	// retried briefly, then logged and dropped, so the triggering operation
	// (application submit, message send, status update) is never failed by it.
	Notify(ctx context.Context, input NotifyInput)
	NotifyNewApplication(ctx context.Context, ownerID, applicantID, referenceType, referenceID, listingTitle string)
	NotifyApplicationStatusChange(ctx context.Context, applicantID, reviewerID, applicationID, newStatus string)
	NotifyNewMessage(ctx context.Context, recipientID, senderID, conversationID, preview string)

	List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
	DeleteAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	store       storage.NotificationStore
	UserService *UserService
	clock       clockwork.Clock
}

func NewNotificationService(store storage.NotificationStore, userService *UserService, clock clockwork.Clock) *notificationService {
	return &notificationService{
		store:       store,
		UserService: userService,
		clock:       clock,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (ns *notificationService) Notify(ctx context.Context, input NotifyInput) {
	if input.RecipientID == "" {
		log.Printf("Dropping notification without recipient (type %s)", input.Type)
		return
	}

	n := &models.Notification{
		ID:            uuid.New().String(),
		UserID:        input.RecipientID,
		Type:          input.Type,
		Title:         input.Title,
		Content:       input.Content,
		ActionURL:     optional(input.ActionURL),
		ActionText:    optional(input.ActionText),
		ReferenceType: optional(input.ReferenceType),
		ReferenceID:   optional(input.ReferenceID),
		FromUserID:    optional(input.FromUserID),
		CreatedAt:     ns.clock.Now().UTC(),
	}

	backoff := retry.WithMaxRetries(2, retry.NewConstant(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := ns.store.Create(ctx, n); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating notification for user %s: %v", input.RecipientID, err)
	}
}

func (ns *notificationService) NotifyNewApplication(ctx context.Context, ownerID, applicantID, referenceType, referenceID, listingTitle string) {
	applicantName := "Someone"
	if applicant, err := ns.UserService.GetUserById(ctx, applicantID); err == nil {
		applicantName = applicant.Username
	}
	ns.Notify(ctx, NotifyInput{
		RecipientID:   ownerID,
		Type:          models.NotificationTypeNewApplication,
		Title:         "New application",
		Content:       fmt.Sprintf("%s applied to %q", applicantName, listingTitle),
		ActionURL:     fmt.Sprintf("/applications/%s", referenceID),
		ActionText:    "Review application",
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		FromUserID:    applicantID,
	})
}

func (ns *notificationService) NotifyApplicationStatusChange(ctx context.Context, applicantID, reviewerID, applicationID, newStatus string) {
	ns.Notify(ctx, NotifyInput{
		RecipientID:   applicantID,
		Type:          models.NotificationTypeApplicationStatusChange,
		Title:         "Application status updated",
		Content:       fmt.Sprintf("Your application status changed to %q", newStatus),
		ActionURL:     fmt.Sprintf("/applications/%s", applicationID),
		ActionText:    "View application",
		ReferenceType: "application",
		ReferenceID:   applicationID,
		FromUserID:    reviewerID,
	})
}

func (ns *notificationService) NotifyNewMessage(ctx context.Context, recipientID, senderID, conversationID, preview string) {
	senderName := "Someone"
	if sender, err := ns.UserService.GetUserById(ctx, senderID); err == nil {
		senderName = sender.Username
	}
	ns.Notify(ctx, NotifyInput{
		RecipientID:   recipientID,
		Type:          models.NotificationTypeNewMessage,
		Title:         fmt.Sprintf("New message from %s", senderName),
		Content:       preview,
		ActionURL:     fmt.Sprintf("/conversations/%s", conversationID),
		ActionText:    "Open conversation",
		ReferenceType: "conversation",
		ReferenceID:   conversationID,
		FromUserID:    senderID,
	})
}

func (ns *notificationService) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]models.Notification, int, error) {
	offset := (page - 1) * limit
	notifications, err := ns.store.ListByUser(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	// unread total is computed over the whole inbox, not the page window
	unread, err := ns.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (ns *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := ns.store.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return models.ErrForbidden
	}
	if n.IsRead {
		return nil
	}
	return ns.store.MarkRead(ctx, notificationID, ns.clock.Now().UTC())
}

func (ns *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return ns.store.MarkAllRead(ctx, userID, ns.clock.Now().UTC())
}

func (ns *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	n, err := ns.store.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return models.ErrForbidden
	}
	return ns.store.Delete(ctx, notificationID)
}

func (ns *notificationService) DeleteAllRead(ctx context.Context, userID string) error {
	return ns.store.DeleteAllRead(ctx, userID)
}
