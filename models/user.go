package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered account. PasswordHash is a bcrypt hash; the plain
// password is never stored or retrievable.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a User with the password hashed at the given bcrypt cost.
func NewUser(username, email, password string, bcryptCost int) (*User, error) {
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}, nil
}

// CheckPassword verifies the supplied password against the stored hash.
// bcrypt's comparison is constant-time with respect to the hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// WatchlistEntry is a ticker on a user's watch-list. (user_id, ticker) is
// unique: adding the same ticker twice is a no-op.
type WatchlistEntry struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	Ticker  string    `json:"ticker"`
	AddedAt time.Time `json:"added_at"`
}
