package events

import "context"

// NoopPublisher discards all events. The server falls back to it when no
// NATS URL is configured, so the voting core never has to nil-check its
// publisher.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
