// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/clipstream/clipstream/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to credential-store records.
//
// Implementations must normalize nothing themselves: callers pass handles and
// emails already lowercased.
type UserRepository interface {
	// Create inserts a new user. A taken handle or email yields ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByLogin loads a user whose handle or email equals login.
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	// GetByUsername loads a user by handle only.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ExistAll reports whether every given ID resolves to a user, in one round trip.
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
	// UpdateProfile replaces email and full name.
	UpdateProfile(ctx context.Context, id uuid.UUID, email, fullName string) (*model.User, error)
	// UpdateAvatarURL replaces the avatar reference.
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) (*model.User, error)
	// UpdateCoverURL replaces the cover-image reference.
	UpdateCoverURL(ctx context.Context, id uuid.UUID, url string) (*model.User, error)
	// UpdatePassword replaces the password hash and salt.
	UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error
	// SetRefreshToken unconditionally stores a new refresh token (login path).
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// RotateRefreshToken swaps old for new only if old is still the stored value.
	// A mismatch (already rotated or cleared) yields ErrUnauthorized.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, old, new string) error
	// ClearRefreshToken unsets the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
}
