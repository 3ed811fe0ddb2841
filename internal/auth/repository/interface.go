package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already in use")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore defines the user persistence operations needed by auth.
// PostgresStore and MongoStore implement it.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
}

var (
	_ UserStore = (*PostgresStore)(nil)
	_ UserStore = (*MongoStore)(nil)
)
