package postgres

import (
	"context"
	"time"

	"FreelanceHub/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Append(ctx context.Context, msg *models.Message, preview string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin append message")
	}
	defer tx.Rollback(ctx)

	attachments := &pgtype.TextArray{}
	if err := attachments.Set(msg.Attachments); err != nil {
		return errors.Wrap(err, "encode attachments")
	}

	insert := qb.Insert("messages").
		Columns("id", "conversation_id", "sender_id", "content", "reply_to_id",
			"attachments", "is_deleted", "created_at").
		Values(msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.ReplyToID,
			attachments, false, msg.CreatedAt).
		Suffix("RETURNING seq")
	sqlStr, args, err := insert.ToSql()
	if err != nil {
		return errors.Wrap(err, "build message insert")
	}
	if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&msg.Seq); err != nil {
		return errors.Wrap(err, "insert message")
	}

	denorm := qb.Update("conversations").
		Set("last_message_at", msg.CreatedAt).
		Set("last_message_preview", preview).
		Where(squirrel.Eq{"id": msg.ConversationID})
	sqlStr, args, err = denorm.ToSql()
	if err != nil {
		return errors.Wrap(err, "build conversation denorm update")
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, "update conversation preview")
	}

	// store-level increment so concurrent sends never lose updates
	counters := qb.Update("conversation_participants").
		Set("unread_count", squirrel.Expr("unread_count + 1")).
		Where(squirrel.And{
			squirrel.Eq{"conversation_id": msg.ConversationID, "is_active": true},
			squirrel.NotEq{"user_id": msg.SenderID},
		})
	sqlStr, args, err = counters.ToSql()
	if err != nil {
		return errors.Wrap(err, "build unread increment")
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, "increment unread counters")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit append message")
	}
	return nil
}

var messageColumns = []string{
	"id", "seq", "conversation_id", "sender_id", "content", "reply_to_id",
	"attachments", "is_deleted", "deleted_at", "created_at",
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	var attachments pgtype.TextArray
	err := row.Scan(&msg.ID, &msg.Seq, &msg.ConversationID, &msg.SenderID,
		&msg.Content, &msg.ReplyToID, &attachments, &msg.IsDeleted,
		&msg.DeletedAt, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if attachments.Status == pgtype.Present {
		if err := attachments.AssignTo(&msg.Attachments); err != nil {
			return nil, err
		}
	}
	return &msg, nil
}

func (s *MessageStore) GetByID(ctx context.Context, conversationID, messageID string) (*models.Message, error) {
	query := qb.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"id": messageID, "conversation_id": conversationID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build message select")
	}
	msg, err := scanMessage(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return msg, nil
}

func (s *MessageStore) ListPage(ctx context.Context, conversationID string, limit, offset int, includeDeleted bool) ([]models.Message, error) {
	query := qb.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if !includeDeleted {
		query = query.Where(squirrel.Eq{"is_deleted": false})
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build message list")
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list messages for conversation %s", conversationID)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan message row")
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate message rows")
	}

	// page is fetched newest-first; callers expect chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *MessageStore) SoftDelete(ctx context.Context, conversationID, messageID string, at time.Time) error {
	query := qb.Update("messages").
		Set("is_deleted", true).
		Set("deleted_at", at).
		Where(squirrel.Eq{"id": messageID, "conversation_id": conversationID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build soft delete update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "soft delete message %s", messageID)
	}
	return nil
}
