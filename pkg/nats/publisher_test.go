package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"brdgenius-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "brdgenius.events.brd_generated", Subject(events.BRDGenerated))
}

func TestPublishIntegration(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping integration test: NATS_URL not set")
	}

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = pub.Publish(ctx, events.NewWizardEvent(events.WizardRestarted, "integration", nil))
	assert.NoError(t, err)
}
