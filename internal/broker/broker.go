package broker

import "context"

// MessageQueue is the ingestion transport. Consume blocks until the context
// is cancelled, invoking the handler once per delivered message body.
type MessageQueue interface {
	Publish(ctx context.Context, data []byte) error
	Consume(ctx context.Context, handler func([]byte) error) error
	Close() error
}
