package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a create collides with an
	// existing email. The store enforces this atomically; callers must
	// not rely on a prior lookup alone.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is a stored account. PasswordHash is nil for accounts created
// purely through federated login. FederatedIDs maps provider name to
// the provider-assigned subject, at most one entry per provider.
//
// A user always has at least one authentication method: registration
// requires a password and federated login supplies a federated id.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash *string
	FederatedIDs map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines persistence operations for users. Email lookups are
// case-insensitive over the trimmed address.
type Store interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, u User) (User, error)
}
