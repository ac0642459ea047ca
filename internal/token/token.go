// Package token issues and verifies the two classes of signed session tokens.
//
// Access and refresh tokens are signed with independent HS256 secrets so a
// leaked access secret cannot forge refresh tokens and vice versa. Tokens are
// stateless; server-side revocation happens only through the refresh-token
// equality check at the store layer.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Kind selects which signing secret and TTL apply.
type Kind int

const (
	Access Kind = iota
	Refresh
)

func (k Kind) String() string {
	if k == Refresh {
		return "refresh"
	}
	return "access"
}

// Verification failure sentinels.
var (
	// ErrExpired indicates a well-formed token past its expiry.
	ErrExpired = errors.New("token expired")

	// ErrInvalid indicates a malformed token or bad signature.
	ErrInvalid = errors.New("token invalid")
)

// Claims is the recovered token payload.
type Claims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs and verifies session tokens.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// New constructs a token service. Both secrets are required; a missing secret
// is a configuration error and must abort startup.
func New(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*Service, error) {
	if len(accessSecret) == 0 {
		return nil, errors.New("token: access signing secret is not set")
	}
	if len(refreshSecret) == 0 {
		return nil, errors.New("token: refresh signing secret is not set")
	}
	return &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccess creates a signed short-lived access token for the user.
func (s *Service) IssueAccess(userID uuid.UUID) (string, time.Time, error) {
	return s.issue(userID, s.accessSecret, s.accessTTL)
}

// IssueRefresh creates a signed longer-lived refresh token for the user.
func (s *Service) IssueRefresh(userID uuid.UUID) (string, time.Time, error) {
	return s.issue(userID, s.refreshSecret, s.refreshTTL)
}

func (s *Service) issue(userID uuid.UUID, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	return signed, exp, err
}

// Verify checks signature and expiry for a token of the given kind and
// recovers its claims. Expired tokens fail with ErrExpired, everything else
// with ErrInvalid. No side effects.
func (s *Service) Verify(tokenStr string, kind Kind) (Claims, error) {
	secret := s.accessSecret
	if kind == Refresh {
		secret = s.refreshSecret
	}

	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &rc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: %s", ErrExpired, kind)
		}
		return Claims{}, fmt.Errorf("%w: %s", ErrInvalid, kind)
	}

	userID, err := uuid.FromString(rc.Subject)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: bad subject", ErrInvalid)
	}
	c := Claims{UserID: userID}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
