package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Publisher sends a payload on a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ChannelForwarder relays events to a pub/sub channel as JSON.
type ChannelForwarder struct {
	publisher Publisher
	channel   string
	logger    *zap.Logger
}

// NewChannelForwarder creates a forwarder publishing on channel.
func NewChannelForwarder(publisher Publisher, channel string, logger *zap.Logger) *ChannelForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelForwarder{publisher: publisher, channel: channel, logger: logger}
}

// Register subscribes the forwarder to every assignment event.
func (f *ChannelForwarder) Register(d Dispatcher) {
	SubscribeAll(d, AssignmentEventTypes, f.Handle)
}

// Handle publishes event.
func (f *ChannelForwarder) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := f.publisher.Publish(ctx, f.channel, body); err != nil {
		f.logger.Warn("failed to publish assignment event",
			zap.String("event_id", event.ID),
			zap.String("channel", f.channel),
			zap.Error(err))
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
