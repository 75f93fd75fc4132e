package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	"github.com/MarceloMarchiori/m3class-backend/pkg/events"
	"github.com/MarceloMarchiori/m3class-backend/pkg/events/idempotency"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
	"github.com/MarceloMarchiori/m3class-backend/pkg/metrics"
)

const schoolEventsConsumer = "notify-worker"

type consumerRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type feedPublisher interface {
	Publish(ctx context.Context, notification *models.Notification) error
}

// Consumer turns school domain events into persisted notifications and
// pushes them onto each recipient's live feed.
type Consumer struct {
	repo         consumerRepository
	feed         feedPublisher
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	metrics      *metrics.ConsumerMetrics
	logg         *logger.Logger
}

// ConsumerParams bundles the consumer dependencies.
type ConsumerParams struct {
	Repo         consumerRepository
	Feed         feedPublisher
	Subscription *pubsub.Subscriber
	Idempotency  *idempotency.Manager
	Metrics      *metrics.ConsumerMetrics
	Logger       *logger.Logger
}

// NewConsumer builds a school events consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Feed == nil {
		return nil, fmt.Errorf("notification feed required")
	}
	if params.Subscription == nil {
		return nil, fmt.Errorf("events subscription required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         params.Repo,
		feed:         params.Feed,
		subscription: params.Subscription,
		idempotency:  params.Idempotency,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	started := time.Now()
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	envelope, err := events.Decode(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		c.metrics.IncFailed(eventType)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, schoolEventsConsumer, envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		c.metrics.IncDuplicate(string(envelope.Type))
		return processResult{ack: true}
	}

	if err := c.handle(ctx, envelope, logCtx); err != nil {
		c.logg.Error(logCtx, "event handling failed", err)
		c.metrics.IncFailed(string(envelope.Type))
		_ = c.idempotency.Delete(ctx, schoolEventsConsumer, envelope.EventID)
		return processResult{nack: true}
	}

	c.metrics.IncProcessed(string(envelope.Type))
	c.metrics.ObserveDuration(string(envelope.Type), time.Since(started))
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, envelope *events.Envelope, logCtx context.Context) error {
	switch envelope.Type {
	case enums.EventAbsenceRecorded:
		return c.notifyFromEvent(ctx, envelope, logCtx, enums.NotificationTypeAbsence, "Falta registrada")
	case enums.EventGradePosted:
		return c.notifyFromEvent(ctx, envelope, logCtx, enums.NotificationTypeGrade, "Nova nota lançada")
	case enums.EventPaymentConfirmed:
		return c.notifyFromEvent(ctx, envelope, logCtx, enums.NotificationTypePayment, "Pagamento confirmado")
	case enums.EventAnnouncementPublished:
		return c.notifyFromEvent(ctx, envelope, logCtx, enums.NotificationTypeGeneral, "Novo comunicado")
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

type notificationPayload struct {
	RecipientIDs []uuid.UUID     `json:"recipientIds"`
	Title        string          `json:"title,omitempty"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data,omitempty"`
}

func (c *Consumer) notifyFromEvent(ctx context.Context, envelope *events.Envelope, logCtx context.Context, notifType enums.NotificationType, defaultTitle string) error {
	var payload notificationPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if len(payload.RecipientIDs) == 0 {
		return fmt.Errorf("recipient ids missing")
	}

	title := payload.Title
	if title == "" {
		title = defaultTitle
	}

	for _, recipientID := range payload.RecipientIDs {
		if recipientID == uuid.Nil {
			continue
		}
		notification := &models.Notification{
			RecipientID: recipientID,
			SchoolID:    envelope.SchoolID,
			Type:        notifType,
			Title:       title,
			Message:     payload.Message,
			Data:        payload.Data,
		}
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
		if err := c.feed.Publish(ctx, notification); err != nil {
			// The row is durable; a missed push only delays delivery to
			// the next initial fetch.
			c.logg.Warn(c.logg.WithFields(logCtx, map[string]any{
				"recipient_id": recipientID.String(),
			}), "live push failed")
		}
	}
	c.logg.Info(logCtx, "recipients notified")
	return nil
}
