package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
	"github.com/gofrs/uuid/v5"
)

type edge struct{ subscriber, channel uuid.UUID }

type fakeSubs struct {
	edges []edge
}

var _ repository.SubscriptionRepository = (*fakeSubs)(nil)

func (f *fakeSubs) Create(_ context.Context, subscriberID, channelID uuid.UUID) (*model.Subscription, error) {
	for _, e := range f.edges {
		if e.subscriber == subscriberID && e.channel == channelID {
			return nil, errs.ErrAlreadyExists
		}
	}
	f.edges = append(f.edges, edge{subscriberID, channelID})
	return &model.Subscription{
		ID:           uuid.Must(uuid.NewV4()),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    time.Now(),
	}, nil
}

func (f *fakeSubs) ChannelStats(_ context.Context, channelID, viewerID uuid.UUID) (int64, int64, bool, error) {
	var subscribers, subscribedTo int64
	var viewerSubscribed bool
	for _, e := range f.edges {
		if e.channel == channelID {
			subscribers++
			if e.subscriber == viewerID {
				viewerSubscribed = true
			}
		}
		if e.subscriber == channelID {
			subscribedTo++
		}
	}
	return subscribers, subscribedTo, viewerSubscribed, nil
}

type fakeVideos struct {
	byUser map[uuid.UUID][]model.WatchItem
}

var _ repository.VideoRepository = (*fakeVideos)(nil)

func (f *fakeVideos) WatchHistory(_ context.Context, userID uuid.UUID) ([]model.WatchItem, error) {
	items := f.byUser[userID]
	if items == nil {
		items = []model.WatchItem{}
	}
	return items, nil
}

func addUser(f *fakeUsers, username string) uuid.UUID {
	id := uuid.Must(uuid.NewV4())
	f.byID[id] = &model.User{ID: id, Username: username, Email: username + "@example.com", FullName: username}
	return id
}

func TestSubscribe(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	subs := &fakeSubs{}
	g := NewGraph(users, subs, &fakeVideos{})

	alice := addUser(users, "alice")
	bob := addUser(users, "bob")

	if _, err := g.Subscribe(context.Background(), uuid.Nil, bob); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if _, err := g.Subscribe(context.Background(), alice, uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference, got %v", err)
	}

	s, err := g.Subscribe(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if s.SubscriberID != alice || s.ChannelID != bob {
		t.Fatalf("bad edge: %+v", s)
	}

	// The same pair again must be rejected with no second edge.
	if _, err := g.Subscribe(context.Background(), alice, bob); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
	if len(subs.edges) != 1 {
		t.Fatalf("duplicate edge persisted: %d", len(subs.edges))
	}

	// Self-subscription is not guarded against.
	if _, err := g.Subscribe(context.Background(), alice, alice); err != nil {
		t.Fatalf("self-subscribe: %v", err)
	}
}

func TestChannelProfile_Aggregates(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	subs := &fakeSubs{}
	g := NewGraph(users, subs, &fakeVideos{})

	channel := addUser(users, "channel")
	viewer := addUser(users, "viewer")
	u2 := addUser(users, "u2")
	u3 := addUser(users, "u3")
	other := addUser(users, "other")

	for _, sub := range []uuid.UUID{viewer, u2, u3} {
		if _, err := g.Subscribe(context.Background(), sub, channel); err != nil {
			t.Fatalf("seed subscribe: %v", err)
		}
	}
	if _, err := g.Subscribe(context.Background(), channel, other); err != nil {
		t.Fatalf("seed subscribe: %v", err)
	}

	p, err := g.ChannelProfile(context.Background(), "Channel", viewer)
	if err != nil {
		t.Fatalf("ChannelProfile: %v", err)
	}
	if p.SubscriberCount != 3 || p.SubscribedToCount != 1 || !p.IsSubscribedByViewer {
		t.Fatalf("bad aggregates: %+v", p)
	}

	p, err = g.ChannelProfile(context.Background(), "channel", other)
	if err != nil {
		t.Fatalf("ChannelProfile(other): %v", err)
	}
	if p.IsSubscribedByViewer {
		t.Fatalf("other viewer is not subscribed")
	}

	if _, err := g.ChannelProfile(context.Background(), "ghost", viewer); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := g.ChannelProfile(context.Background(), "  ", viewer); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestWatchHistory(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	videos := &fakeVideos{byUser: map[uuid.UUID][]model.WatchItem{}}
	g := NewGraph(users, &fakeSubs{}, videos)

	alice := addUser(users, "alice")
	owner := addUser(users, "owner")

	// Empty history is a result, not an error.
	items, err := g.WatchHistory(context.Background(), alice)
	if err != nil {
		t.Fatalf("WatchHistory(empty): %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("want empty slice, got %#v", items)
	}

	videos.byUser[alice] = []model.WatchItem{
		{ID: uuid.Must(uuid.NewV4()), Title: "first", Owner: model.VideoOwner{ID: owner, Username: "owner"}},
		{ID: uuid.Must(uuid.NewV4()), Title: "second", Owner: model.VideoOwner{ID: owner, Username: "owner"}},
	}
	items, err = g.WatchHistory(context.Background(), alice)
	if err != nil {
		t.Fatalf("WatchHistory: %v", err)
	}
	if len(items) != 2 || items[0].Title != "first" || items[1].Title != "second" {
		t.Fatalf("order not preserved: %+v", items)
	}

	if _, err := g.WatchHistory(context.Background(), uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for missing user, got %v", err)
	}
}
