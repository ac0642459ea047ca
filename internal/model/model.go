// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access/refresh pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics and cookies)
}

// User represents an account. Username and email are stored lowercase; the
// password exists only as a salted hash. RefreshToken holds the single
// currently valid refresh token, nil when the user is logged out.
type User struct {
	ID            uuid.UUID // PK
	Username      string    // unique handle, lowercase
	Email         string    // unique, lowercase
	FullName      string
	AvatarURL     string
	CoverImageURL string
	PwdHash       []byte // Argon2id(password, SaltAuth)
	SaltAuth      []byte // per-user auth salt
	RefreshToken  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Public strips credential fields for responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// PublicUser is the outward projection of a user. It never carries the
// password hash or the stored refresh token.
type PublicUser struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Subscription is a directed subscriber -> channel edge. Immutable once created.
type Subscription struct {
	ID           uuid.UUID `json:"id"`
	SubscriberID uuid.UUID `json:"subscriberId"`
	ChannelID    uuid.UUID `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelProfile is the aggregated public view of a channel as seen by a viewer.
type ChannelProfile struct {
	ID                   uuid.UUID `json:"id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	FullName             string    `json:"fullName"`
	AvatarURL            string    `json:"avatar"`
	CoverImageURL        string    `json:"coverImage"`
	SubscriberCount      int64     `json:"subscriberCount"`
	SubscribedToCount    int64     `json:"subscribedToCount"`
	IsSubscribedByViewer bool      `json:"isSubscribed"`
}

// VideoOwner is the reduced owner projection attached to a watch-history item.
type VideoOwner struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatar"`
}

// WatchItem is one entry of a user's watch history: the video joined with its
// owner's public fields.
type WatchItem struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	VideoURL     string     `json:"videoUrl"`
	ThumbnailURL string     `json:"thumbnail"`
	Duration     int64      `json:"duration"`
	Views        int64      `json:"views"`
	Owner        VideoOwner `json:"owner"`
	WatchedAt    time.Time  `json:"watchedAt"`
}
