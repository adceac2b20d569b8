package service

import (
	"context"
	"encoding/json"

	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventBroadcaster is implemented by the websocket hub. The consumer only
// knows the interface so the service layer never imports the hub directly.
type EventBroadcaster interface {
	Broadcast(event *dto.CellRunEvent)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	broadcaster EventBroadcaster
	log         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	broadcaster EventBroadcaster,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event dto.CellRunEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.log.Error("consumer", "failed to unmarshal run event", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed payloads, retrying cannot fix them.
		msg.Ack()
		return
	}

	cs.broadcaster.Broadcast(&event)
	msg.Ack()
}
