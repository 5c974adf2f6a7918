package live

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/murtaza309/streemza/model"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/murtaza309/streemza/worker"
	"github.com/pkg/errors"
)

const DefaultRelayChannel = "streemza.notifications"

type RedisRelayConfig struct {
	Name    string
	Channel string
}

// RedisRelay fans notifications out to every server replica. As a Deliverer
// it publishes on a redis channel; as a module it subscribes to that channel
// and pushes what arrives to the local SignalChannels.
type RedisRelay struct {
	worker.Module

	Config RedisRelayConfig

	client *redis.Client
	local  *SignalChannels
}

func NewRedisRelay(config RedisRelayConfig, client *redis.Client, local *SignalChannels) *RedisRelay {
	if config.Channel == "" {
		config.Channel = DefaultRelayChannel
	}
	return &RedisRelay{
		Config: config,
		client: client,
		local:  local,
	}
}

func (r *RedisRelay) Deliver(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.Config.Channel, payload).Err(); err != nil {
		return errors.Wrap(err, "publish to redis")
	}
	return nil
}

func (r *RedisRelay) RunModule(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.Config.Channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed so a broken connection
	// surfaces as an error and the module is restarted.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "subscribe redis relay channel")
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis relay channel closed")
			}
			n := &model.Notification{}
			if err := json.Unmarshal([]byte(msg.Payload), n); err != nil {
				Logger.Log.Errorf("cannot decode relayed notification: %v", err)
				continue
			}
			if err := r.local.Deliver(ctx, n); err != nil {
				Logger.Log.Errorf("cannot deliver relayed notification %s: %v", n.Id, err)
			}
		}
	}
}

func (r *RedisRelay) Name() string {
	return r.Config.Name
}

func (r *RedisRelay) Shutdown() {
	if err := r.client.Close(); err != nil {
		Logger.Log.Errorf("fail to close redis client: %v", err)
	}
}
