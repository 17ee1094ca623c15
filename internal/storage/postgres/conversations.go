package postgres

import (
	"context"
	"log"
	"time"

	"FreelanceHub/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

type ConversationStore struct {
	pool *pgxpool.Pool
}

func NewConversationStore(pool *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{pool: pool}
}

var conversationColumns = []string{
	"id", "type", "subject", "linked_project_id", "linked_job_id",
	"last_message_at", "last_message_preview", "status", "created_at",
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var conv models.Conversation
	err := row.Scan(&conv.ID, &conv.Type, &conv.Subject, &conv.LinkedProjectID,
		&conv.LinkedJobID, &conv.LastMessageAt, &conv.LastMessagePreview,
		&conv.Status, &conv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *ConversationStore) CreateDirect(ctx context.Context, conv *models.Conversation, directKey string, participants []models.ConversationParticipant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin create direct conversation")
	}
	defer tx.Rollback(ctx)

	insertConv := qb.Insert("conversations").
		Columns("id", "type", "subject", "linked_project_id", "linked_job_id",
			"last_message_preview", "status", "direct_key", "created_at").
		Values(conv.ID, conv.Type, conv.Subject, conv.LinkedProjectID, conv.LinkedJobID,
			conv.LastMessagePreview, conv.Status, directKey, conv.CreatedAt)
	sqlStr, args, err := insertConv.ToSql()
	if err != nil {
		return errors.Wrap(err, "build conversation insert")
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			// lost the race for the pair's direct conversation
			return models.ErrConflict
		}
		return errors.Wrap(err, "insert conversation")
	}

	for _, p := range participants {
		insertPart := qb.Insert("conversation_participants").
			Columns("conversation_id", "user_id", "role", "unread_count",
				"is_muted", "is_active", "joined_at").
			Values(conv.ID, p.UserID, p.Role, p.UnreadCount, p.IsMuted, p.IsActive, p.JoinedAt)
		sqlStr, args, err := insertPart.ToSql()
		if err != nil {
			return errors.Wrap(err, "build participant insert")
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return errors.Wrapf(err, "insert participant %s", p.UserID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit create direct conversation")
	}
	log.Printf("Conversation %s created (%s)", conv.ID, conv.Type)
	return nil
}

func (s *ConversationStore) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := qb.Select(conversationColumns...).
		From("conversations").
		Where(squirrel.Eq{"id": id})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build conversation select")
	}
	conv, err := scanConversation(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return conv, nil
}

func (s *ConversationStore) FindDirectBetween(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	query := qb.Select(
		"c.id", "c.type", "c.subject", "c.linked_project_id", "c.linked_job_id",
		"c.last_message_at", "c.last_message_preview", "c.status", "c.created_at").
		From("conversations c").
		Join("conversation_participants p1 ON c.id = p1.conversation_id").
		Join("conversation_participants p2 ON c.id = p2.conversation_id").
		Where(squirrel.Eq{
			"c.type":       models.ConversationTypeDirect,
			"c.status":     models.ConversationStatusActive,
			"p1.user_id":   userA,
			"p1.is_active": true,
			"p2.user_id":   userB,
			"p2.is_active": true,
		})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build direct lookup")
	}
	conv, err := scanConversation(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return conv, nil
}

func (s *ConversationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ConversationSummary, error) {
	query := qb.Select(
		"c.id", "c.type", "c.subject", "c.linked_project_id", "c.linked_job_id",
		"c.last_message_at", "c.last_message_preview", "c.status", "c.created_at",
		"cp.unread_count", "cp.is_muted").
		From("conversations c").
		Join("conversation_participants cp ON c.id = cp.conversation_id").
		Where(squirrel.Eq{
			"cp.user_id":   userID,
			"cp.is_active": true,
			"c.status":     models.ConversationStatusActive,
		}).
		OrderBy("c.last_message_at DESC NULLS LAST", "c.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build conversation list")
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list conversations for user %s", userID)
	}
	defer rows.Close()

	var summaries []models.ConversationSummary
	for rows.Next() {
		var s models.ConversationSummary
		err := rows.Scan(&s.ID, &s.Type, &s.Subject, &s.LinkedProjectID, &s.LinkedJobID,
			&s.LastMessageAt, &s.LastMessagePreview, &s.Status, &s.CreatedAt,
			&s.UnreadCount, &s.IsMuted)
		if err != nil {
			return nil, errors.Wrap(err, "scan conversation row")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate conversation rows")
	}
	return summaries, nil
}

func (s *ConversationStore) GetParticipant(ctx context.Context, conversationID, userID string) (*models.ConversationParticipant, error) {
	query := qb.Select("conversation_id", "user_id", "role", "unread_count",
		"last_read_at", "is_muted", "is_active", "joined_at").
		From("conversation_participants").
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build participant select")
	}

	var p models.ConversationParticipant
	err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(&p.ConversationID, &p.UserID,
		&p.Role, &p.UnreadCount, &p.LastReadAt, &p.IsMuted, &p.IsActive, &p.JoinedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (s *ConversationStore) ListActiveParticipants(ctx context.Context, conversationID string) ([]models.ConversationParticipant, error) {
	query := qb.Select("conversation_id", "user_id", "role", "unread_count",
		"last_read_at", "is_muted", "is_active", "joined_at").
		From("conversation_participants").
		Where(squirrel.Eq{"conversation_id": conversationID, "is_active": true}).
		OrderBy("joined_at ASC")
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build participants select")
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list participants for conversation %s", conversationID)
	}
	defer rows.Close()

	var participants []models.ConversationParticipant
	for rows.Next() {
		var p models.ConversationParticipant
		err := rows.Scan(&p.ConversationID, &p.UserID, &p.Role, &p.UnreadCount,
			&p.LastReadAt, &p.IsMuted, &p.IsActive, &p.JoinedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan participant row")
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate participant rows")
	}
	return participants, nil
}

func (s *ConversationStore) MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	query := qb.Update("conversation_participants").
		Set("unread_count", 0).
		Set("last_read_at", at).
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build mark read update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "mark conversation %s read for user %s", conversationID, userID)
	}
	return nil
}

func (s *ConversationStore) SetMuted(ctx context.Context, conversationID, userID string, muted bool) error {
	query := qb.Update("conversation_participants").
		Set("is_muted", muted).
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build mute update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "set muted for user %s in conversation %s", userID, conversationID)
	}
	return nil
}

func (s *ConversationStore) Deactivate(ctx context.Context, conversationID, userID string) error {
	query := qb.Update("conversation_participants").
		Set("is_active", false).
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build deactivate update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "deactivate participant %s in conversation %s", userID, conversationID)
	}
	log.Printf("Participant %s left conversation %s", userID, conversationID)
	return nil
}

func (s *ConversationStore) Archive(ctx context.Context, conversationID string) error {
	query := qb.Update("conversations").
		Set("status", models.ConversationStatusArchived).
		Where(squirrel.Eq{"id": conversationID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build archive update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "archive conversation %s", conversationID)
	}
	log.Printf("Conversation %s archived", conversationID)
	return nil
}
