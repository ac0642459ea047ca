// Package service contains application services for sessions and the
// subscription graph.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/clipstream/clipstream/internal/assets"
	pkgcrypto "github.com/clipstream/clipstream/internal/crypto"
	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/limiter"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
	"github.com/clipstream/clipstream/internal/token"
	"github.com/gofrs/uuid/v5"
)

// FileUpload is a received multipart file handed to the asset store.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// RegisterInput carries validated registration fields. Avatar is required,
// Cover optional.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *FileUpload
	Cover    *FileUpload
}

// LoginResult is what a successful login or refresh returns to the transport.
type LoginResult struct {
	User   model.PublicUser
	Tokens model.Tokens
}

// Session orchestrates login/logout/refresh over the credential store and the
// token service.
type Session struct {
	users   repository.UserRepository
	tokens  *token.Service
	uploads assets.Uploader
	lim     limiter.Limiter
}

// NewSession constructs the session controller with required dependencies.
func NewSession(users repository.UserRepository, tokens *token.Service, uploads assets.Uploader, lim limiter.Limiter) *Session {
	return &Session{users: users, tokens: tokens, uploads: uploads, lim: lim}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register creates a new user record. The avatar asset must upload before any
// store write happens, so a missing or failed avatar leaves no partial user.
func (s *Session) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	if in.Username == "" || in.Email == "" || in.FullName == "" || in.Password == "" {
		return model.PublicUser{}, fmt.Errorf("%w: all fields are required", errs.ErrValidation)
	}
	if in.Avatar == nil {
		return model.PublicUser{}, fmt.Errorf("%w: avatar file is required", errs.ErrValidation)
	}

	avatarURL, err := s.uploads.Upload(ctx, in.Avatar.Filename, in.Avatar.ContentType, in.Avatar.Content)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("%w: avatar upload: %v", errs.ErrUpstream, err)
	}
	var coverURL string
	if in.Cover != nil {
		// Cover is optional; a failed upload degrades to an empty reference.
		if url, err := s.uploads.Upload(ctx, in.Cover.Filename, in.Cover.ContentType, in.Cover.Content); err == nil {
			coverURL = url
		}
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.PublicUser{}, err
	}
	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return model.PublicUser{}, err
	}

	u := &model.User{
		ID:            uid,
		Username:      normalize(in.Username),
		Email:         normalize(in.Email),
		FullName:      strings.TrimSpace(in.FullName),
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PwdHash:       pkgcrypto.HashPassword([]byte(in.Password), salt),
		SaltAuth:      salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.PublicUser{}, fmt.Errorf("%w: username or email taken", errs.ErrAlreadyExists)
		}
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

// Login authenticates by handle or email, issues a token pair and persists
// the refresh token, terminating any previous session for the user.
func (s *Session) Login(ctx context.Context, login, password, ip string) (LoginResult, error) {
	if login == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: login and password are required", errs.ErrValidation)
	}
	login = normalize(login)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, login, ipHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !allowed {
		return LoginResult{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("%w: user", errs.ErrNotFound)
		}
		return LoginResult{}, err
	}
	if !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, login, ipHash); ferr == nil && blocked {
			return LoginResult{}, errs.ErrRateLimited
		}
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	_ = s.lim.Success(ctx, login, ipHash)

	tokens, err := s.issuePair(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	// Persist before returning so a concurrent refresh with the old token
	// is guaranteed to fail.
	if err := s.users.SetRefreshToken(ctx, u.ID, tokens.RefreshToken); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u.Public(), Tokens: tokens}, nil
}

// Logout clears the stored refresh token. Idempotent; the access token stays
// valid until natural expiry.
func (s *Session) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// Refresh rotates a presented refresh token into a new pair. Every failure
// collapses into ErrUnauthorized so callers learn nothing about the cause.
func (s *Session) Refresh(ctx context.Context, presented string) (LoginResult, error) {
	if presented == "" {
		return LoginResult{}, fmt.Errorf("%w: missing refresh token", errs.ErrUnauthorized)
	}
	claims, err := s.tokens.Verify(presented, token.Refresh)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: refresh token rejected", errs.ErrUnauthorized)
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: refresh token rejected", errs.ErrUnauthorized)
	}

	tokens, err := s.issuePair(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	// Compare-and-swap on the stored value: a replayed or already-rotated
	// token loses the race exactly once.
	if err := s.users.RotateRefreshToken(ctx, u.ID, presented, tokens.RefreshToken); err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return LoginResult{}, fmt.Errorf("%w: refresh token rejected", errs.ErrUnauthorized)
		}
		return LoginResult{}, err
	}
	return LoginResult{User: u.Public(), Tokens: tokens}, nil
}

// ChangePassword replaces the password hash after verifying the old password.
// Outstanding tokens are not rotated.
func (s *Session) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: both password fields are required", errs.ErrValidation)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifyPassword([]byte(oldPassword), u.SaltAuth, u.PwdHash) {
		return fmt.Errorf("%w: wrong password", errs.ErrUnauthorized)
	}
	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, pkgcrypto.HashPassword([]byte(newPassword), salt), salt)
}

// CurrentUser returns the sanitized record for an authenticated user.
func (s *Session) CurrentUser(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

// UpdateAccount replaces email and full name.
func (s *Session) UpdateAccount(ctx context.Context, userID uuid.UUID, email, fullName string) (model.PublicUser, error) {
	if email == "" || fullName == "" {
		return model.PublicUser{}, fmt.Errorf("%w: email and fullName are required", errs.ErrValidation)
	}
	u, err := s.users.UpdateProfile(ctx, userID, normalize(email), strings.TrimSpace(fullName))
	if err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

// UpdateAvatar uploads a new avatar asset and stores its URL.
func (s *Session) UpdateAvatar(ctx context.Context, userID uuid.UUID, f *FileUpload) (model.PublicUser, error) {
	return s.updateImage(ctx, userID, f, "avatar", s.users.UpdateAvatarURL)
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (s *Session) UpdateCoverImage(ctx context.Context, userID uuid.UUID, f *FileUpload) (model.PublicUser, error) {
	return s.updateImage(ctx, userID, f, "cover image", s.users.UpdateCoverURL)
}

func (s *Session) updateImage(
	ctx context.Context, userID uuid.UUID, f *FileUpload, field string,
	save func(context.Context, uuid.UUID, string) (*model.User, error),
) (model.PublicUser, error) {
	if f == nil {
		return model.PublicUser{}, fmt.Errorf("%w: %s file missing", errs.ErrValidation, field)
	}
	url, err := s.uploads.Upload(ctx, f.Filename, f.ContentType, f.Content)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("%w: %s upload: %v", errs.ErrUpstream, field, err)
	}
	u, err := save(ctx, userID, url)
	if err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *Session) issuePair(userID uuid.UUID) (model.Tokens, error) {
	access, exp, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, _, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}
