package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"FreelanceHub/server/internal/models"
)

// memStore is an in-memory stand-in for the postgres stores, with the same
// contract: sentinel errors from internal/models, atomic unread increments,
// direct-key uniqueness, newest-first pagination returned chronologically.
type memStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	directKeys    map[string]string
	participants  map[string]map[string]*models.ConversationParticipant
	messages      []*models.Message
	notifications []*models.Notification
	users         map[string]*models.User
	seq           int64
}

func newMemStore(users ...*models.User) *memStore {
	s := &memStore{
		conversations: make(map[string]*models.Conversation),
		directKeys:    make(map[string]string),
		participants:  make(map[string]map[string]*models.ConversationParticipant),
		users:         make(map[string]*models.User),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// ConversationStore

func (s *memStore) CreateDirect(ctx context.Context, conv *models.Conversation, directKey string, participants []models.ConversationParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.directKeys[directKey]; exists {
		return models.ErrConflict
	}
	c := *conv
	s.conversations[conv.ID] = &c
	s.directKeys[directKey] = conv.ID
	s.participants[conv.ID] = make(map[string]*models.ConversationParticipant)
	for _, p := range participants {
		row := p
		s.participants[conv.ID][p.UserID] = &row
	}
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *conv
	return &c, nil
}

func (s *memStore) FindDirectBetween(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conv := range s.conversations {
		if conv.Type != models.ConversationTypeDirect || conv.Status != models.ConversationStatusActive {
			continue
		}
		pa, okA := s.participants[id][userA]
		pb, okB := s.participants[id][userB]
		if okA && okB && pa.IsActive && pb.IsActive {
			c := *conv
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var summaries []models.ConversationSummary
	for id, conv := range s.conversations {
		if conv.Status != models.ConversationStatusActive {
			continue
		}
		p, ok := s.participants[id][userID]
		if !ok || !p.IsActive {
			continue
		}
		summaries = append(summaries, models.ConversationSummary{
			Conversation: *conv,
			UnreadCount:  p.UnreadCount,
			IsMuted:      p.IsMuted,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
	})
	if offset >= len(summaries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(summaries) {
		end = len(summaries)
	}
	return summaries[offset:end], nil
}

func (s *memStore) GetParticipant(ctx context.Context, conversationID, userID string) (*models.ConversationParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[conversationID][userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	row := *p
	return &row, nil
}

func (s *memStore) ListActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConversationParticipant
	for _, p := range s.participants[conversationID] {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *memStore) MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[conversationID][userID]; ok {
		p.UnreadCount = 0
		t := at
		p.LastReadAt = &t
	}
	return nil
}

func (s *memStore) SetMuted(ctx context.Context, conversationID, userID string, muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[conversationID][userID]; ok {
		p.IsMuted = muted
	}
	return nil
}

func (s *memStore) Deactivate(ctx context.Context, conversationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[conversationID][userID]; ok {
		p.IsActive = false
	}
	return nil
}

func (s *memStore) Archive(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.ErrNotFound
	}
	conv.Status = models.ConversationStatusArchived
	for key, id := range s.directKeys {
		if id == conversationID {
			delete(s.directKeys, key)
		}
	}
	return nil
}

// MessageStore

func (s *memStore) Append(ctx context.Context, msg *models.Message, preview string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[msg.ConversationID]
	if !ok {
		return models.ErrNotFound
	}
	s.seq++
	msg.Seq = s.seq
	m := *msg
	s.messages = append(s.messages, &m)

	t := msg.CreatedAt
	conv.LastMessageAt = &t
	conv.LastMessagePreview = preview
	for _, p := range s.participants[msg.ConversationID] {
		if p.UserID != msg.SenderID && p.IsActive {
			p.UnreadCount++
		}
	}
	return nil
}

func (s *memStore) GetMessageByID(ctx context.Context, conversationID, messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == messageID && m.ConversationID == conversationID {
			msg := *m
			return &msg, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) ListPage(ctx context.Context, conversationID string, limit, offset int, includeDeleted bool) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Message
	for _, m := range s.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if m.IsDeleted && !includeDeleted {
			continue
		}
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Seq > all[j].Seq
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[offset:end]
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func (s *memStore) SoftDelete(ctx context.Context, conversationID, messageID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == messageID && m.ConversationID == conversationID {
			m.IsDeleted = true
			t := at
			m.DeletedAt = &t
			return nil
		}
	}
	return models.ErrNotFound
}

// NotificationStore

func (s *memStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *n
	s.notifications = append(s.notifications, &row)
	return nil
}

func (s *memStore) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			row := *n
			return &row, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) ListNotificationsByUser(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		all = append(all, *n)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStore) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memStore) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			n.IsRead = true
			t := at
			n.ReadAt = &t
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memStore) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			t := at
			n.ReadAt = &t
		}
	}
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) DeleteAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.UserID == userID && n.IsRead {
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return nil
}

// UserStore

func (s *memStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	user := *u
	return &user, nil
}

// Adapters: the four store interfaces overload GetByID/ListByUser/MarkRead
// with different signatures, so each view shadows the colliding names.

type memConversations struct{ *memStore }

type memMessages struct{ *memStore }

func (m memMessages) GetByID(ctx context.Context, conversationID, messageID string) (*models.Message, error) {
	return m.GetMessageByID(ctx, conversationID, messageID)
}

type memNotifications struct{ *memStore }

func (m memNotifications) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	return m.GetNotificationByID(ctx, id)
}

func (m memNotifications) ListByUser(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	return m.ListNotificationsByUser(ctx, userID, limit, offset, unreadOnly)
}

func (m memNotifications) MarkRead(ctx context.Context, id string, at time.Time) error {
	return m.MarkNotificationRead(ctx, id, at)
}

type memUsers struct{ *memStore }

func (m memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByID(ctx, id)
}

// failingNotificationStore rejects every insert, for fire-and-forget tests.
type failingNotificationStore struct {
	memNotifications
	attempts int
}

func (f *failingNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	return errors.New("gateway unavailable")
}
