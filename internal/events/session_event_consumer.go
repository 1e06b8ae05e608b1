package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/RG-1903/Urban-Drive-sub000/internal/application"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/events"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/kafka"
)

// SessionEventConsumer listens to auth events and discards open drafts when
// the session that created them is revoked.
type SessionEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.WizardService
	logger   *zap.Logger
}

// NewSessionEventConsumer creates a new SessionEventConsumer.
func NewSessionEventConsumer(
	brokers []string,
	groupID string,
	service *application.WizardService,
	logger *zap.Logger,
) *SessionEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicAuthEvents, logger)
	return &SessionEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming auth events. This blocks until the context is cancelled.
func (c *SessionEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *SessionEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *SessionEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from auth topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.AuthSessionRevoked:
		return c.handleSessionRevoked(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled auth event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *SessionEventConsumer) handleSessionRevoked(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.SessionRevokedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse SessionRevokedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	removed, err := c.service.DiscardUserDrafts(ctx, evt.UserID)
	if err != nil {
		c.logger.Error("failed to discard drafts after session revocation",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("processed session revocation",
		zap.String("user_id", evt.UserID.String()),
		zap.Int64("drafts_discarded", removed),
	)
	return nil
}
