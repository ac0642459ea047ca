package repository

import (
	"context"

	"github.com/clipstream/clipstream/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SubscriptionRepository persists the directed subscriber -> channel edge set.
type SubscriptionRepository interface {
	// Create inserts a new edge. The store enforces at most one edge per
	// (subscriber, channel) pair; a duplicate yields ErrAlreadyExists and an
	// endpoint that is not a user yields ErrInvalidReference.
	Create(ctx context.Context, subscriberID, channelID uuid.UUID) (*model.Subscription, error)

	// ChannelStats aggregates, in one pass over the edge set: the number of
	// subscribers of channelID, the number of channels channelID subscribes
	// to, and whether an edge (viewerID, channelID) exists.
	ChannelStats(ctx context.Context, channelID, viewerID uuid.UUID) (subscribers, subscribedTo int64, viewerSubscribed bool, err error)
}
