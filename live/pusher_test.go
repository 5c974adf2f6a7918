package live

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/notification"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPusherDeliversEmittedNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer bus.Close()
	sigChan := NewSignalChannels()
	pusher := NewPusher(PusherConfig{Name: "pusher"}, bus, sigChan)
	go pusher.RunModule(ctx)

	ch, _ := sigChan.AddNewConnection(ctx, "bob")

	s := store.NewFakeStore()
	fanout := notification.NewFanout(s, s, bus)

	// The pusher subscribes asynchronously; emit until it picks one up.
	var got *model.Notification
	deadline := time.After(2 * time.Second)
	for got == nil {
		_, err := fanout.Emit(ctx, "bob", model.NotificationKindLike, "hello bob", nil)
		require.NoError(t, err)
		select {
		case got = <-ch:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("notification was not pushed")
		}
	}
	assert.Equal(t, "bob", got.UserID)
	assert.Equal(t, "hello bob", got.Message)
}

func TestPusherSkipsUndecodableMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	defer bus.Close()
	sigChan := NewSignalChannels()
	ch, _ := sigChan.AddNewConnection(ctx, "bob")

	payload, err := json.Marshal(&model.Notification{Id: "n2", UserID: "bob"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(notification.TopicNotificationCreated,
		message.NewMessage(watermill.NewUUID(), []byte("not json")),
		message.NewMessage(watermill.NewUUID(), payload),
	))

	go NewPusher(PusherConfig{Name: "pusher"}, bus, sigChan).RunModule(ctx)

	select {
	case n := <-ch:
		assert.Equal(t, "n2", n.Id)
	case <-time.After(time.Second):
		t.Fatal("valid notification was not pushed")
	}
}

func TestRedisRelay(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST is not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisherClient, err := utils.GetRedisClient(ctx)
	require.NoError(t, err)
	subscriberClient, err := utils.GetRedisClient(ctx)
	require.NoError(t, err)

	channel := "streemza.test." + utils.RandomAlphabetString(8)
	sigChan := NewSignalChannels()
	sender := NewRedisRelay(RedisRelayConfig{Name: "sender", Channel: channel}, publisherClient, NewSignalChannels())
	receiver := NewRedisRelay(RedisRelayConfig{Name: "receiver", Channel: channel}, subscriberClient, sigChan)
	defer sender.Shutdown()
	defer receiver.Shutdown()
	go receiver.RunModule(ctx)

	ch, _ := sigChan.AddNewConnection(ctx, "bob")

	var got *model.Notification
	deadline := time.After(3 * time.Second)
	for got == nil {
		require.NoError(t, sender.Deliver(ctx, &model.Notification{Id: "n1", UserID: "bob", Message: "relayed"}))
		select {
		case got = <-ch:
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("notification was not relayed")
		}
	}
	assert.Equal(t, "relayed", got.Message)
}
