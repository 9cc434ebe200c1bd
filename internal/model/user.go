package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User is a stable identity a bearer credential resolves to.
// Guests have an empty Email and PasswordHash; registered users log in
// with email + password.
type User struct {
	ID           UserID
	Email        string // empty for guests
	PasswordHash string // bcrypt hash, empty for guests
	Name         string
	CreatedAt    time.Time
}

// IsGuest reports whether this identity was created without credentials.
func (u *User) IsGuest() bool {
	return u.Email == ""
}
