package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	t.Cleanup(func() { _ = pubSub.Close() })
	return pubSub
}

func TestEventPublisherWritesEnvelope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pubSub := newPubSub(t)

	messages, err := pubSub.Subscribe(ctx, WizardEventsTopic)
	require.NoError(t, err)

	publisher := NewEventPublisherService("", pubSub)
	evt := events.NewWizardEvent(events.BRDGenerated, sessionID, map[string]interface{}{"length": 42})
	require.NoError(t, publisher.Publish(ctx, evt))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, events.BRDGenerated, msg.Metadata.Get("event_type"))
		decoded, err := events.Unmarshal(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, events.BRDGenerated, decoded.Type)
		assert.Equal(t, sessionID, decoded.Data["session_id"])
		assert.EqualValues(t, 42, decoded.Data["length"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

type chanForwarder struct {
	received chan events.Event
	err      error
}

func (c *chanForwarder) Publish(_ context.Context, evt events.Event) error {
	c.received <- evt
	return c.err
}

func TestActivityConsumerForwardsEvents(t *testing.T) {
	tests := []struct {
		name       string
		forwardErr error
	}{
		{name: "forwarded"},
		{name: "forwarder failure is only logged", forwardErr: errors.New("nats: no responders")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pubSub := newPubSub(t)
			forwarder := &chanForwarder{received: make(chan events.Event, 2), err: tt.forwardErr}

			consumer := NewActivityConsumerService(pubSub, WizardEventsTopic, forwarder, logger.NewNopLogger())
			require.NoError(t, consumer.Consume(ctx))

			require.NoError(t, pubSub.Publish(WizardEventsTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
			publisher := NewEventPublisherService(WizardEventsTopic, pubSub)
			require.NoError(t, publisher.Publish(ctx, events.NewWizardEvent(events.WizardRestarted, sessionID, nil)))

			select {
			case evt := <-forwarder.received:
				assert.Equal(t, events.WizardRestarted, evt.EventType())
				assert.Equal(t, sessionID, evt.Payload()["session_id"])
			case <-time.After(2 * time.Second):
				t.Fatal("event was not forwarded")
			}
		})
	}
}

func TestActivityConsumerWithoutForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pubSub := newPubSub(t)

	consumer := NewActivityConsumerService(pubSub, "", nil, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewEventPublisherService("", pubSub)
	assert.NoError(t, publisher.Publish(ctx, events.NewWizardEvent(events.DocumentExported, sessionID, nil)))
}
