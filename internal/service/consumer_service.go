package service

import (
	"context"

	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventForwarder relays events off-process. *nats.Publisher satisfies it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventNotifier pushes an event to the sockets of one user.
type EventNotifier interface {
	Deliver(ctx context.Context, userId uuid.UUID, event events.Event)
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	notifier   EventNotifier
	logger     logger.ILogger
}

// NewConsumerService drains the in-process bus. forwarder and notifier may
// be nil; events are then only logged.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	notifier EventNotifier,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		notifier:   notifier,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("EVENTS", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("EVENTS", event.EventType(), event.Payload())

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			// best effort; the event is already in the log
			cs.logger.Warn("EVENTS", "Failed to forward event to NATS", map[string]interface{}{
				"event_type": event.EventType(),
				"error":      err.Error(),
			})
		}
	}

	if cs.notifier != nil {
		if owner, ok := eventOwner(event); ok {
			cs.notifier.Deliver(ctx, owner, event)
		}
	}

	msg.Ack()
}

func eventOwner(event events.Event) (uuid.UUID, bool) {
	raw, _ := event.Payload()["user_id"].(string)
	id, err := uuid.Parse(raw)
	return id, err == nil
}
