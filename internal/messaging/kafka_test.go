package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	commonmetrics "registration-service/common/metrics"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	ID       string `json:"id"`
	TeamName string `json:"team_name"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(0))
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "registrations" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "id-1" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var ev testEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		if ev.TeamName != "Byte Force" {
			return errors.New("unexpected team " + ev.TeamName)
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "registrations", commonmetrics.NewMock(), discardLogger())

	err := pub.Publish(context.Background(), "id-1", testEvent{ID: "id-1", TeamName: "Byte Force"})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(0))
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "registrations", commonmetrics.NewMock(), discardLogger())

	err := pub.Publish(context.Background(), "id-2", testEvent{ID: "id-2"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(0))

	pub := NewKafkaPublisherWithProducer(producer, "registrations", commonmetrics.NewMock(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.Publish(ctx, "id-3", testEvent{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_MarshalError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(0))

	pub := NewKafkaPublisherWithProducer(producer, "registrations", commonmetrics.NewMock(), discardLogger())

	err := pub.Publish(context.Background(), "id-4", make(chan int))
	assert.Error(t, err)
	require.NoError(t, pub.Close())
}

func TestNewSaramaConfig(t *testing.T) {
	config := NewSaramaConfig(0)

	assert.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
	assert.True(t, config.Producer.Return.Successes)
	assert.Equal(t, "registration-service", config.ClientID)
	assert.NoError(t, config.Validate())
}
