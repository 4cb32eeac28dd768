// Package kafka provides an audit sink that produces events to a Kafka topic.
//
// Events are keyed by user ID so per-user ordering is preserved within a
// partition. The topic is created on construction if it does not exist.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "poagate/pkg/platform/audit"
)

// Sink produces audit events to a Kafka topic.
type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures the Sink.
type Option func(*Sink)

// WithLogger sets a logger for produce failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New connects to the given brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string, opts ...Option) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	s := &Sink{client: client, topic: topic}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Append produces one event synchronously. The caller's operation does not
// depend on delivery; failures are returned so the publisher can log them.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "audit event produce failed",
				"topic", s.topic, "action", event.Action, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %s: %w", topic, resp.Err)
	}
	return nil
}
