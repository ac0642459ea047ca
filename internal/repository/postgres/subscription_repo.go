package postgres

import (
	"context"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SubscriptionRepo implements SubscriptionRepository using PostgreSQL.
type SubscriptionRepo struct{ db *DB }

// NewSubscriptionRepo constructs a subscription repository.
func NewSubscriptionRepo(db *DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Create inserts a new edge. Uniqueness of (subscriber_id, channel_id) is
// enforced by the store itself, so concurrent identical requests cannot both
// insert.
func (r *SubscriptionRepo) Create(ctx context.Context, subscriberID, channelID uuid.UUID) (*model.Subscription, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO subscriptions (id, subscriber_id, channel_id)
VALUES ($1, $2, $3)
RETURNING created_at`
	var s model.Subscription
	s.ID, s.SubscriberID, s.ChannelID = id, subscriberID, channelID
	if err := r.db.Pool.QueryRow(ctx, q, id, subscriberID, channelID).Scan(&s.CreatedAt); err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, errs.ErrAlreadyExists
		case isForeignKeyViolation(err):
			return nil, errs.ErrInvalidReference
		}
		return nil, err
	}
	return &s, nil
}

// ChannelStats computes both aggregate counts and the viewer relationship in
// a single query over the edge set.
func (r *SubscriptionRepo) ChannelStats(ctx context.Context, channelID, viewerID uuid.UUID) (int64, int64, bool, error) {
	const q = `
SELECT
  (SELECT count(*) FROM subscriptions WHERE channel_id=$1),
  (SELECT count(*) FROM subscriptions WHERE subscriber_id=$1),
  EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id=$2 AND channel_id=$1)`
	var subscribers, subscribedTo int64
	var viewerSubscribed bool
	if err := r.db.Pool.QueryRow(ctx, q, channelID, viewerID).Scan(&subscribers, &subscribedTo, &viewerSubscribed); err != nil {
		return 0, 0, false, err
	}
	return subscribers, subscribedTo, viewerSubscribed, nil
}
