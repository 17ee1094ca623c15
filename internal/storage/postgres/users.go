package postgres

import (
	"context"

	"FreelanceHub/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := qb.Select("id", "username", "email", "avatar_url", "created_at").
		From("users").
		Where(squirrel.Eq{"id": id})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build user select")
	}

	var user models.User
	err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(&user.ID, &user.Username,
		&user.Email, &user.AvatarURL, &user.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}
