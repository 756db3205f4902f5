package models

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice", "a@x.com", "pw1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewUser() failed: %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("Username = %v, want 'alice'", user.Username)
	}
	if user.Email != "a@x.com" {
		t.Errorf("Email = %v, want 'a@x.com'", user.Email)
	}
	if user.PasswordHash == "" {
		t.Error("PasswordHash should not be empty")
	}
	if user.PasswordHash == "pw1" {
		t.Error("PasswordHash must not be the plaintext password")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@x.com", "pw"},
		{"empty email", "alice", "", "pw"},
		{"empty password", "alice", "a@x.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewUser(tt.username, tt.email, tt.password, bcrypt.MinCost); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestUser_CheckPassword(t *testing.T) {
	user, err := NewUser("alice", "a@x.com", "correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewUser() failed: %v", err)
	}

	if !user.CheckPassword("correct horse") {
		t.Error("CheckPassword should accept the original password")
	}
	if user.CheckPassword("battery staple") {
		t.Error("CheckPassword should reject a wrong password")
	}
	if user.CheckPassword("") {
		t.Error("CheckPassword should reject an empty password")
	}
}
