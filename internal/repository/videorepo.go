package repository

import (
	"context"

	"github.com/clipstream/clipstream/internal/model"
	"github.com/gofrs/uuid/v5"
)

// VideoRepository provides the watch-history join.
type VideoRepository interface {
	// WatchHistory returns the user's watched videos in watch order, each
	// joined with the owning user reduced to public fields. A user with an
	// empty history yields an empty slice, not an error.
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchItem, error)
}
