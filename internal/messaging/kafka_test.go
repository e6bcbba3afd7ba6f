package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinawarp/downloads/internal/config"
)

func TestDownloadEvent_Serialization(t *testing.T) {
	event := DownloadEvent{
		Type:       EventDownloadCompleted,
		CustomerID: "cus_ABC123",
		ObjectKey:  "RinaWarp-Terminal-Pro-1.0.0.dmg",
		RequestID:  "req-1",
		Timestamp:  time.Now().UTC(),
	}

	eventBytes, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded DownloadEvent
	require.NoError(t, json.Unmarshal(eventBytes, &decoded))

	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, event.CustomerID, decoded.CustomerID)
	assert.Equal(t, event.ObjectKey, decoded.ObjectKey)
	assert.Equal(t, event.RequestID, decoded.RequestID)
}

func TestNewEventBus_DisabledWithoutBrokers(t *testing.T) {
	cfg := &config.Config{}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	bus := NewEventBus(cfg, logger)
	assert.Nil(t, bus)

	// A nil bus must be safe to use from the request path.
	bus.TokenIssued(context.Background(), "cus_ABC123", "req-1")
	bus.DownloadCompleted(context.Background(), "cus_ABC123", "key", "req-1")
	assert.NoError(t, bus.Close())
}
