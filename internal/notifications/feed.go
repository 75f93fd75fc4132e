package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
)

type feedBroker interface {
	Subscribe(ctx context.Context, channels ...string) (*redislib.PubSub, error)
	Publish(ctx context.Context, channel string, payload any) error
	NotifyChannel(userID string) string
}

// Feed is the live notification channel. Each recipient has a dedicated
// pub/sub channel; consumers open a subscription handle scoped to the
// effective identity and must close it before opening another one, so an
// impersonation switch or sign-out never leaks push events across tenants.
type Feed struct {
	broker feedBroker
}

// NewFeed builds the feed over the shared Redis client.
func NewFeed(broker feedBroker) (*Feed, error) {
	if broker == nil {
		return nil, fmt.Errorf("feed broker is required")
	}
	return &Feed{broker: broker}, nil
}

// Subscription is an open handle on one recipient's live feed.
type Subscription struct {
	pubsub *redislib.PubSub
	events chan models.Notification
	done   chan struct{}
}

// Open subscribes to the recipient's channel and starts decoding pushed
// notifications in arrival order.
func (f *Feed) Open(ctx context.Context, recipientID uuid.UUID) (*Subscription, error) {
	if recipientID == uuid.Nil {
		return nil, fmt.Errorf("recipient id is required")
	}
	pubsub, err := f.broker.Subscribe(ctx, f.broker.NotifyChannel(recipientID.String()))
	if err != nil {
		return nil, fmt.Errorf("subscribe notification feed: %w", err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan models.Notification, 16),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

// Publish pushes a freshly created notification onto its recipient's channel.
func (f *Feed) Publish(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return fmt.Errorf("notification is required")
	}
	raw, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	channel := f.broker.NotifyChannel(notification.RecipientID.String())
	return f.broker.Publish(ctx, channel, string(raw))
}

func (s *Subscription) pump() {
	defer close(s.events)
	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var notification models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				continue
			}
			select {
			case s.events <- notification:
			case <-s.done:
				return
			}
		}
	}
}

// Events returns the decoded notification stream in arrival order. The
// channel closes after Close.
func (s *Subscription) Events() <-chan models.Notification {
	return s.events
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.pubsub.Close()
}
