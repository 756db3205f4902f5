package repository

import (
	"context"
	"fmt"

	"trend-watch/models"

	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new user and fills in its generated id. A duplicate
// username or email returns models.ErrConflict; the unique indexes make
// exactly one of two concurrent registrations win.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, user.Username, user.Email, user.PasswordHash, user.CreatedAt).Scan(&user.ID)

	if isUniqueViolation(err) {
		return fmt.Errorf("create user %q: %w", user.Username, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByUsername returns the user with the given username, or nil when
// no such user exists.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// GetUserByID returns the user with the given id, or nil when absent.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}
