package postgres

import (
	"context"
	"time"

	"FreelanceHub/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

type NotificationStore struct {
	pool *pgxpool.Pool
}

func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

var notificationColumns = []string{
	"id", "user_id", "notification_type", "title", "content", "action_url",
	"action_text", "reference_type", "reference_id", "from_user_id",
	"is_read", "read_at", "created_at",
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	query := qb.Insert("notifications").
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.Type, n.Title, n.Content, n.ActionURL,
			n.ActionText, n.ReferenceType, n.ReferenceID, n.FromUserID,
			n.IsRead, n.ReadAt, n.CreatedAt)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build notification insert")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "insert notification for user %s", n.UserID)
	}
	return nil
}

func (s *NotificationStore) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := qb.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"id": id})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build notification select")
	}

	var n models.Notification
	err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(&n.ID, &n.UserID, &n.Type,
		&n.Title, &n.Content, &n.ActionURL, &n.ActionText, &n.ReferenceType,
		&n.ReferenceID, &n.FromUserID, &n.IsRead, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &n, nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	query := qb.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if unreadOnly {
		query = query.Where(squirrel.Eq{"is_read": false})
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build notification list")
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list notifications for user %s", userID)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Content,
			&n.ActionURL, &n.ActionText, &n.ReferenceType, &n.ReferenceID,
			&n.FromUserID, &n.IsRead, &n.ReadAt, &n.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan notification row")
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate notification rows")
	}
	return notifications, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	query := qb.Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build unread count")
	}

	var count int
	if err := s.pool.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "count unread notifications for user %s", userID)
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string, at time.Time) error {
	query := qb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"id": id})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build mark read update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "mark notification %s read", id)
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	query := qb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"user_id": userID, "is_read": false})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build mark all read update")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "mark all notifications read for user %s", userID)
	}
	return nil
}

func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	query := qb.Delete("notifications").Where(squirrel.Eq{"id": id})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build notification delete")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "delete notification %s", id)
	}
	return nil
}

func (s *NotificationStore) DeleteAllRead(ctx context.Context, userID string) error {
	query := qb.Delete("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": true})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "build read purge")
	}
	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "purge read notifications for user %s", userID)
	}
	return nil
}
