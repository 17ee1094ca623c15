package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"FreelanceHub/server/internal/models"

	"github.com/jonboulle/clockwork"
)

func newNotificationFixture(users ...*models.User) (*memStore, *clockwork.FakeClock, NotificationService) {
	store := newMemStore(users...)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	userSvc := NewUserService(memUsers{store})
	return store, clock, NewNotificationService(memNotifications{store}, userSvc, clock)
}

func TestNotifyFireAndForget(t *testing.T) {
	alice, bob, carol := testUsers()
	store := newMemStore(alice, bob, carol)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	failing := &failingNotificationStore{memNotifications: memNotifications{store}}
	userSvc := NewUserService(memUsers{store})
	svc := NewNotificationService(failing, userSvc, clock)

	// the store rejects every write; Notify must neither panic nor surface it
	svc.Notify(context.Background(), NotifyInput{
		RecipientID: bob.ID,
		Type:        models.NotificationTypeSystem,
		Title:       "maintenance window",
	})

	if failing.attempts == 0 {
		t.Fatalf("expected at least one insert attempt")
	}
	if failing.attempts != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", failing.attempts)
	}
}

func TestNotifyDropsMissingRecipient(t *testing.T) {
	alice, bob, carol := testUsers()
	store, _, svc := newNotificationFixture(alice, bob, carol)

	svc.Notify(context.Background(), NotifyInput{
		Type:  models.NotificationTypeSystem,
		Title: "nobody home",
	})
	if len(store.notifications) != 0 {
		t.Fatalf("expected no notification rows, got %d", len(store.notifications))
	}
}

func TestApplicationEventPayloads(t *testing.T) {
	alice, bob, carol := testUsers()
	store, _, svc := newNotificationFixture(alice, bob, carol)
	ctx := context.Background()

	svc.NotifyNewApplication(ctx, bob.ID, alice.ID, "job", "job-42", "Go backend contract")
	svc.NotifyApplicationStatusChange(ctx, alice.ID, bob.ID, "app-7", "accepted")

	if len(store.notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(store.notifications))
	}

	application := store.notifications[0]
	if application.UserID != bob.ID || application.Type != models.NotificationTypeNewApplication {
		t.Fatalf("unexpected new_application notification: %+v", application)
	}
	if application.FromUserID == nil || *application.FromUserID != alice.ID {
		t.Fatalf("expected applicant as actor")
	}
	if application.ReferenceID == nil || *application.ReferenceID != "job-42" {
		t.Fatalf("expected reference to the job")
	}

	status := store.notifications[1]
	if status.UserID != alice.ID || status.Type != models.NotificationTypeApplicationStatusChange {
		t.Fatalf("unexpected status notification: %+v", status)
	}
	if !strings.Contains(status.Content, "accepted") {
		t.Fatalf("expected new status in content, got %q", status.Content)
	}
}

func TestFeedAggregation(t *testing.T) {
	alice, bob, carol := testUsers()
	_, _, svc := newNotificationFixture(alice, bob, carol)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.Notify(ctx, NotifyInput{
			RecipientID: alice.ID,
			Type:        models.NotificationTypeSystem,
			Title:       "ping",
		})
	}
	svc.Notify(ctx, NotifyInput{
		RecipientID: bob.ID,
		Type:        models.NotificationTypeSystem,
		Title:       "other inbox",
	})

	all, unread, err := svc.List(ctx, alice.ID, 1, 20, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 5 || unread != 5 {
		t.Fatalf("expected 5 notifications all unread, got %d/%d", len(all), unread)
	}

	if err := svc.MarkRead(ctx, alice.ID, all[0].ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unreadOnly, unread, err := svc.List(ctx, alice.ID, 1, 20, true)
	if err != nil {
		t.Fatalf("List unread_only failed: %v", err)
	}
	if len(unreadOnly) != 4 || unread != 4 {
		t.Fatalf("expected 4 unread, got %d/%d", len(unreadOnly), unread)
	}
	for _, n := range unreadOnly {
		if n.IsRead {
			t.Fatalf("unread_only listing returned a read notification")
		}
	}

	// unread total ignores the pagination window
	page, unread, err := svc.List(ctx, alice.ID, 1, 1, false)
	if err != nil {
		t.Fatalf("List with small page failed: %v", err)
	}
	if len(page) != 1 || unread != 4 {
		t.Fatalf("expected page of 1 with unread total 4, got %d/%d", len(page), unread)
	}
}

func TestMarkReadOwnershipAndIdempotence(t *testing.T) {
	alice, bob, carol := testUsers()
	store, clock, svc := newNotificationFixture(alice, bob, carol)
	ctx := context.Background()

	svc.Notify(ctx, NotifyInput{RecipientID: alice.ID, Type: models.NotificationTypeSystem, Title: "hello"})
	id := store.notifications[0].ID

	if err := svc.MarkRead(ctx, bob.ID, id); err != models.ErrForbidden {
		t.Fatalf("expected ErrForbidden for foreign notification, got %v", err)
	}
	if err := svc.MarkRead(ctx, alice.ID, "missing"); err != models.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := svc.MarkRead(ctx, alice.ID, id); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	readAt := *store.notifications[0].ReadAt

	clock.Advance(time.Hour)
	if err := svc.MarkRead(ctx, alice.ID, id); err != nil {
		t.Fatalf("repeated MarkRead failed: %v", err)
	}
	// read→read is a no-op; the original read_at survives
	if !store.notifications[0].ReadAt.Equal(readAt) {
		t.Fatalf("expected read_at to be write-once")
	}
}

func TestDeleteAndPurge(t *testing.T) {
	alice, bob, carol := testUsers()
	store, _, svc := newNotificationFixture(alice, bob, carol)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Notify(ctx, NotifyInput{RecipientID: alice.ID, Type: models.NotificationTypeSystem, Title: "n"})
	}
	ids := []string{store.notifications[0].ID, store.notifications[1].ID, store.notifications[2].ID}

	if err := svc.Delete(ctx, bob.ID, ids[0]); err != models.ErrForbidden {
		t.Fatalf("expected ErrForbidden deleting foreign notification, got %v", err)
	}
	// deletion does not need to pass through read
	if err := svc.Delete(ctx, alice.ID, ids[0]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := svc.MarkAllRead(ctx, alice.ID); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	_, unread, err := svc.List(ctx, alice.ID, 1, 20, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread after MarkAllRead, got %d", unread)
	}

	if err := svc.DeleteAllRead(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAllRead failed: %v", err)
	}
	remaining, _, err := svc.List(ctx, alice.ID, 1, 20, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty inbox after purge, got %d", len(remaining))
	}
}
