// Package queue defines the hand-off point between the lead pipeline and whatever delivers
// notifications. The pipeline only enqueues; discovery, delivery and archiving of pending
// records belong to the consumer.
package queue

import (
	"context"
)

// Record is one pending notification.
type Record struct {
	ID        string `json:"-"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Provider defines the common interface for a notification queue.
type Provider interface {
	// Enqueue durably stores a message for later pickup and returns the stored record.
	Enqueue(ctx context.Context, channel, recipient, message string) (Record, error)

	// Close releases any resources held by the provider.
	Close() error
}

// NoOpProvider accepts messages and stores nothing. Dry runs use it so no queue directory
// is touched.
type NoOpProvider struct{}

// Enqueue for NoOpProvider echoes the record without persisting it.
func (n *NoOpProvider) Enqueue(_ context.Context, channel, recipient, message string) (Record, error) {
	return Record{Channel: channel, Recipient: recipient, Message: message}, nil
}

// Close for NoOpProvider does nothing and returns nil.
func (n *NoOpProvider) Close() error { return nil }
