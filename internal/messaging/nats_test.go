package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	commonmetrics "registration-service/common/metrics"
	"registration-service/testing/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSPublisher_Shared(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping NATS integration test in short mode")
	}

	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	pub, err := NewNATSPublisher(natsContainer.URL, "registration.created", time.Second, commonmetrics.NewMock(), discardLogger())
	require.NoError(t, err)
	defer pub.Close()

	t.Run("Publish_DeliversJSONWithKeyHeader", func(t *testing.T) {
		sub := natsContainer.Subscribe(t, "registration.created")

		err := pub.Publish(context.Background(), "id-1", testEvent{ID: "id-1", TeamName: "Byte Force"})
		require.NoError(t, err)

		msg, err := sub.NextMsg(2 * time.Second)
		require.NoError(t, err)

		assert.Equal(t, "id-1", msg.Header.Get(KeyHeader))

		var ev testEvent
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		assert.Equal(t, "Byte Force", ev.TeamName)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, pub.Ping(context.Background()))
	})

	t.Run("Publish_MarshalError", func(t *testing.T) {
		err := pub.Publish(context.Background(), "id-2", make(chan int))
		assert.Error(t, err)
	})
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "registration.created", time.Second, commonmetrics.NewMock(), discardLogger())
	assert.Error(t, err)
}
