package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService hands async work to the in-process bus. Used for
// writes that must not block or fail the user-facing request.
type IPublisherService interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type publisherService struct {
	pubSub *gochannel.GoChannel
}

func NewPublisherService(pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		pubSub: pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return p.pubSub.Publish(topic, msg)
}
