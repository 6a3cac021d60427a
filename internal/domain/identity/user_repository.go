package identity

import (
	"context"
	"time"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id int64) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByIDs loads users keyed by id
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByRole lists users holding role, newest first
	FindByRole(ctx context.Context, role Role) ([]*User, error)

	// FindAll lists every user, newest first
	FindAll(ctx context.Context) ([]*User, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// OTPStore keeps one-time login codes keyed by email
type OTPStore interface {
	// Save stores code for email, replacing any previous code
	Save(ctx context.Context, email, code string, ttl time.Duration) error

	// Consume returns true and deletes the code when it matches and has not expired
	Consume(ctx context.Context, email, code string) (bool, error)
}
