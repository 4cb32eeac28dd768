//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "poagate/pkg/domain"
	audit "poagate/pkg/platform/audit"
	kafkasink "poagate/pkg/platform/audit/store/kafka"
	"poagate/pkg/testutil/containers"
)

func TestSinkProducesAndPreservesKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "poagate.audit.test"
	sink, err := kafkasink.New(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	userID := id.NewUserID()
	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		UserID:    userID,
		Action:    string(audit.EventValidationCompleted),
		Decision:  "pass",
		RequestID: "req-123",
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, userID.String(), string(record.Key))

	var got audit.Event
	require.NoError(t, json.Unmarshal(record.Value, &got))
	assert.Equal(t, event.Action, got.Action)
	assert.Equal(t, event.Decision, got.Decision)
	assert.Equal(t, event.UserID, got.UserID)
	assert.Equal(t, event.RequestID, got.RequestID)
}

func TestSinkTopicAlreadyExists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "poagate.audit.existing"
	first, err := kafkasink.New(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	first.Close()

	// Reconnecting to an existing topic must not error.
	second, err := kafkasink.New(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	second.Close()
}
