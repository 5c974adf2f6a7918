package live

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/notification"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/murtaza309/streemza/worker"
)

// Deliverer hands a notification to wherever its recipient may be listening.
type Deliverer interface {
	Deliver(ctx context.Context, n *model.Notification) error
}

type PusherConfig struct {
	Name string
}

// Pusher listens for persisted notifications on the EventBus and delivers
// them. Delivery is best effort: failures are logged and the message acked.
type Pusher struct {
	worker.Module

	Config PusherConfig

	EventBus  message.Subscriber
	Deliverer Deliverer
}

func NewPusher(config PusherConfig, e message.Subscriber, d Deliverer) *Pusher {
	return &Pusher{
		Config:    config,
		EventBus:  e,
		Deliverer: d,
	}
}

func (p *Pusher) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := p.EventBus.Subscribe(ctx, notification.TopicNotificationCreated)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		n := &model.Notification{}
		if err := json.Unmarshal(msg.Payload, n); err != nil {
			Logger.Log.Errorf("cannot decode notification message %s: %v", msg.UUID, err)
			continue
		}
		if err := p.Deliverer.Deliver(ctx, n); err != nil {
			Logger.Log.Errorf("cannot deliver notification %s: %v", n.Id, err)
		}
	}
	return nil
}

func (p *Pusher) Name() string {
	return p.Config.Name
}

func (p *Pusher) Shutdown() {}
