// Package publisher delivers audit events to a sink, synchronously by
// default or through a buffered channel when async mode is enabled.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "poagate/pkg/platform/audit"
)

// Publisher fans audit events into a Sink.
type Publisher struct {
	sink   audit.Sink
	logger *slog.Logger

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery through a buffered channel
// of the given size. Emit never blocks on the sink; events are dropped with
// a log line if the buffer is full.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher wraps a sink. In async mode a single drain goroutine owns the
// sink; Close drains remaining events before returning.
func NewPublisher(sink audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit delivers one event. In sync mode the sink error is returned; in async
// mode Emit only fails when the buffer is full.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, dropping event", "action", event.Action)
		}
		return nil
	}
}

// Close stops accepting events and drains the buffer.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.sink.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("audit event delivery failed", "action", event.Action, "error", err)
		}
	}
}
