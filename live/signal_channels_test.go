package live

import (
	"context"
	"testing"
	"time"

	"github.com/murtaza309/streemza/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalChannelCreation(t *testing.T) {
	sigChan := NewSignalChannels()
	ctx, cancel := context.WithCancel(context.Background())

	sigChan.AddNewConnection(ctx, "user_1")
	assert.Equal(t, 1, sigChan.GetActiveConnectionsCount())

	cancel()

	assert.Eventually(t, func() bool {
		return sigChan.GetActiveConnectionsCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSignalChannelMultipleCreation(t *testing.T) {
	sigChan := NewSignalChannels()
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	ctx3, cancel3 := context.WithCancel(context.Background())

	// User 1 signed in 2 devices.
	sigChan.AddNewConnection(ctx1, "user_1")
	sigChan.AddNewConnection(ctx2, "user_1")

	// User 2 signed in only 1 device.
	sigChan.AddNewConnection(ctx3, "user_2")

	assert.Equal(t, 3, sigChan.GetActiveConnectionsCount())

	cancel1()
	assert.Eventually(t, func() bool {
		return sigChan.GetActiveConnectionsCount() == 2
	}, time.Second, 10*time.Millisecond)

	cancel2()
	cancel3()
	assert.Eventually(t, func() bool {
		return sigChan.GetActiveConnectionsCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestPushToEveryDeviceOfUser(t *testing.T) {
	sigChan := NewSignalChannels()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	phone, _ := sigChan.AddNewConnection(ctx, "user_1")
	laptop, _ := sigChan.AddNewConnection(ctx, "user_1")
	other, _ := sigChan.AddNewConnection(ctx, "user_2")

	n := &model.Notification{Id: "n1", UserID: "user_1", Message: "hi"}
	require.NoError(t, sigChan.PushToUser(n, "user_1"))

	assert.Equal(t, n, <-phone)
	assert.Equal(t, n, <-laptop)
	assert.Equal(t, 0, len(other))
}

func TestPushWithoutConnection(t *testing.T) {
	sigChan := NewSignalChannels()
	ctx, cancel := context.WithCancel(context.Background())
	sigChan.AddNewConnection(ctx, "user_1")
	cancel()

	assert.Eventually(t, func() bool {
		return sigChan.PushToUser(&model.Notification{Id: "n1"}, "user_1") == ErrNoActiveConnection
	}, time.Second, 10*time.Millisecond)

	// Deliver treats an offline recipient as nothing to do.
	assert.NoError(t, sigChan.Deliver(context.Background(), &model.Notification{Id: "n1", UserID: "user_1"}))
}

func TestPushDropsWhenBufferFull(t *testing.T) {
	sigChan := NewSignalChannels()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _ := sigChan.AddNewConnection(ctx, "user_1")

	for i := 0; i < ChannelBufferSize+5; i++ {
		require.NoError(t, sigChan.PushToUser(&model.Notification{Id: "n"}, "user_1"))
	}
	assert.Equal(t, ChannelBufferSize, len(ch))
}
