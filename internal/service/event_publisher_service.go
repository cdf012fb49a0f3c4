package service

import (
	"context"

	"brdgenius-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// WizardEventsTopic is the in-process topic wizard activity is published on.
const WizardEventsTopic = "wizard.events"

type IEventPublisherService interface {
	Publish(ctx context.Context, evt events.Event) error
}

type eventPublisherService struct {
	topicName string
	publisher message.Publisher
}

func NewEventPublisherService(topicName string, publisher message.Publisher) IEventPublisherService {
	if topicName == "" {
		topicName = WizardEventsTopic
	}
	return &eventPublisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (s *eventPublisherService) Publish(ctx context.Context, evt events.Event) error {
	payload, err := events.Marshal(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", evt.EventType())
	return s.publisher.Publish(s.topicName, msg)
}
