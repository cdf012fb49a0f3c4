package service

import (
	"context"

	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder relays wizard events to an external broker.
type EventForwarder interface {
	Publish(ctx context.Context, evt events.Event) error
}

type IActivityConsumerService interface {
	Consume(ctx context.Context) error
}

type activityConsumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewActivityConsumerService builds the consumer. forwarder may be nil.
func NewActivityConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	log logger.ILogger,
) IActivityConsumerService {
	if topicName == "" {
		topicName = WizardEventsTopic
	}
	return &activityConsumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *activityConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage acks every message. Activity is best effort and a bad or
// unforwardable event must not block the topic.
func (cs *activityConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	evt, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Warn("ActivityConsumer", "Dropping malformed event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Info("ActivityConsumer", "Wizard activity", map[string]interface{}{
		"event":       evt.Type,
		"occurred_at": evt.OccurredAt,
		"data":        evt.Data,
	})

	if cs.forwarder == nil {
		return
	}
	if err := cs.forwarder.Publish(ctx, evt); err != nil {
		cs.logger.Error("ActivityConsumer", "Failed to forward event", map[string]interface{}{
			"event": evt.Type,
			"error": err.Error(),
		})
	}
}
