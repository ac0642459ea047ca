package postgres

import (
	"context"
	"errors"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url, pwd_hash, salt_auth, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &u.CoverImageURL,
		&u.PwdHash, &u.SaltAuth, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// Create inserts a new user row. Unique violations on username or email map
// to ErrAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url, pwd_hash, salt_auth)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.Email, u.FullName, u.AvatarURL, u.CoverImageURL, u.PwdHash, u.SaltAuth)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByLogin selects a user whose username or email equals login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1 OR email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, login))
}

// GetByUsername selects a user by handle.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// ExistAll checks all given IDs in a single round trip.
func (r *UserRepo) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	// Count distinct matches so a repeated ID does not inflate the result.
	const q = `SELECT count(DISTINCT id) FROM users WHERE id = ANY($1::uuid[])`
	distinct := make(map[uuid.UUID]struct{}, len(ids))
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
		strs = append(strs, id.String())
	}
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, strs).Scan(&n); err != nil {
		return false, err
	}
	return n == int64(len(distinct)), nil
}

// UpdateProfile replaces email and full name and returns the updated row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, email, fullName string) (*model.User, error) {
	const q = `
UPDATE users SET email=$2, full_name=$3, updated_at=now()
WHERE id=$1
RETURNING ` + userColumns
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id, email, fullName))
	if isUniqueViolation(err) {
		return nil, errs.ErrAlreadyExists
	}
	return u, err
}

// UpdateAvatarURL replaces the avatar reference.
func (r *UserRepo) UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) (*model.User, error) {
	const q = `
UPDATE users SET avatar_url=$2, updated_at=now()
WHERE id=$1
RETURNING ` + userColumns
	return scanUser(r.db.Pool.QueryRow(ctx, q, id, url))
}

// UpdateCoverURL replaces the cover-image reference.
func (r *UserRepo) UpdateCoverURL(ctx context.Context, id uuid.UUID, url string) (*model.User, error) {
	const q = `
UPDATE users SET cover_image_url=$2, updated_at=now()
WHERE id=$1
RETURNING ` + userColumns
	return scanUser(r.db.Pool.QueryRow(ctx, q, id, url))
}

// UpdatePassword replaces the password hash and salt.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, salt []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, salt_auth=$3, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, pwdHash, salt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetRefreshToken unconditionally overwrites the stored refresh token,
// terminating any previous session.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	const q = `UPDATE users SET refresh_token=$2, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// RotateRefreshToken swaps old for new with a compare-and-swap so two
// concurrent refreshes from the same stale token cannot both succeed.
func (r *UserRepo) RotateRefreshToken(ctx context.Context, id uuid.UUID, old, new string) error {
	const q = `
UPDATE users SET refresh_token=$3, updated_at=now()
WHERE id=$1 AND refresh_token IS NOT DISTINCT FROM $2`
	tag, err := r.db.Pool.Exec(ctx, q, id, old, new)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Already rotated, cleared by logout, or no such user.
		return errs.ErrUnauthorized
	}
	return nil
}

// ClearRefreshToken unsets the stored refresh token. A logged-out user stays
// logged out, so zero affected rows is not an error.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET refresh_token=NULL, updated_at=now() WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}
