// Package eventbus wires the in-process watermill pub/sub used to decouple
// state-changing operations (results loaded, score submitted, team toggled)
// from the subscribers that persist snapshots and record metrics. There is
// exactly one logical session per process, so a gochannel pub/sub is enough;
// no external broker is involved.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topics published by the application modules.
const (
	TopicStandingsComputed = "league.standings.computed"
	TopicWeeklyPlanCreated = "schedule.weekly_plan.created"
	TopicTournamentUpdated = "tournament.updated"
)

// EventBus is the publish/subscribe surface handed to services.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type PubSub struct {
	channel *gochannel.GoChannel
}

// NewPubSub creates the in-process pub/sub.
func NewPubSub(logger *slog.Logger) *PubSub {
	return &PubSub{
		channel: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(logger),
		),
	}
}

// Publish publishes messages to the specified topic.
func (ps *PubSub) Publish(topic string, messages ...*message.Message) error {
	if err := ps.channel.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages for the topic.
func (ps *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return ps.channel.Subscribe(ctx, topic)
}

// Subscriber exposes the underlying subscriber for router handlers.
func (ps *PubSub) Subscriber() message.Subscriber {
	return ps.channel
}

// Close shuts the pub/sub down, closing all subscriber channels.
func (ps *PubSub) Close() error {
	return ps.channel.Close()
}

// NewMessage wraps a payload in a watermill message with a fresh UUID.
func NewMessage(payload []byte) *message.Message {
	return message.NewMessage(uuid.New().String(), payload)
}
