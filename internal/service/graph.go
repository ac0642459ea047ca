package service

import (
	"context"
	"fmt"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// Graph serves subscription-edge mutations and the aggregation queries
// derived from the edge set.
type Graph struct {
	users  repository.UserRepository
	subs   repository.SubscriptionRepository
	videos repository.VideoRepository
}

// NewGraph constructs the graph service.
func NewGraph(users repository.UserRepository, subs repository.SubscriptionRepository, videos repository.VideoRepository) *Graph {
	return &Graph{users: users, subs: subs, videos: videos}
}

// Subscribe creates a subscriber -> channel edge. Both endpoints are checked
// in a single batched lookup; the store's unique constraint rejects
// duplicates. Self-subscription is permitted.
func (g *Graph) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) (*model.Subscription, error) {
	if subscriberID == uuid.Nil || channelID == uuid.Nil {
		return nil, fmt.Errorf("%w: subscriberId and channelId are required", errs.ErrValidation)
	}
	ok, err := g.users.ExistAll(ctx, []uuid.UUID{subscriberID, channelID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: subscriberId or channelId", errs.ErrInvalidReference)
	}
	return g.subs.Create(ctx, subscriberID, channelID)
}

// ChannelProfile resolves a handle and aggregates the channel's public view
// for the given viewer: subscriber count, subscribed-to count and whether the
// viewer holds an edge to the channel.
func (g *Graph) ChannelProfile(ctx context.Context, handle string, viewerID uuid.UUID) (model.ChannelProfile, error) {
	handle = normalize(handle)
	if handle == "" {
		return model.ChannelProfile{}, fmt.Errorf("%w: username is required", errs.ErrValidation)
	}
	u, err := g.users.GetByUsername(ctx, handle)
	if err != nil {
		return model.ChannelProfile{}, err
	}
	subscribers, subscribedTo, viewerSubscribed, err := g.subs.ChannelStats(ctx, u.ID, viewerID)
	if err != nil {
		return model.ChannelProfile{}, err
	}
	return model.ChannelProfile{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		FullName:             u.FullName,
		AvatarURL:            u.AvatarURL,
		CoverImageURL:        u.CoverImageURL,
		SubscriberCount:      subscribers,
		SubscribedToCount:    subscribedTo,
		IsSubscribedByViewer: viewerSubscribed,
	}, nil
}

// WatchHistory returns the user's watched videos in order, each item carrying
// its owner's public fields. An empty history is a valid empty slice.
func (g *Graph) WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchItem, error) {
	if _, err := g.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return g.videos.WatchHistory(ctx, userID)
}
