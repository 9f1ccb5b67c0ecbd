package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

type UsersPostgresRepository struct {
	db *sqlx.DB
}

func NewUsersPostgresRepository(db *sqlx.DB) *UsersPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &UsersPostgresRepository{db: db}
}

func (r *UsersPostgresRepository) Store(ctx context.Context, user entity.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (user_id, email, wallet_balance, wallet_currency)
		VALUES (:user_id, :email, :wallet_balance, :wallet_currency)
		ON CONFLICT (user_id) DO NOTHING
	`, user)
	if err != nil {
		return fmt.Errorf("could not store user: %w", err)
	}
	return nil
}

func (r *UsersPostgresRepository) Get(ctx context.Context, userID string) (entity.User, error) {
	var user entity.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, entity.ErrNotFound
		}
		return entity.User{}, fmt.Errorf("could not get user: %w", err)
	}
	return user, nil
}
