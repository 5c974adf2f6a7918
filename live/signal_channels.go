// Package live pushes freshly persisted notifications to the open websocket
// connections of their recipients.
package live

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/murtaza309/streemza/model"
	Logger "github.com/murtaza309/streemza/utils/log"
)

// ChannelBufferSize is how many notifications a connection may fall behind
// before further ones are dropped for it.
const ChannelBufferSize = 16

var ErrNoActiveConnection = errors.New("no active connection")

// SignalChannels contains all structures that handle users' notification
// channels. All internal state should not be handled by hand but managed by
// its public receivers.
type SignalChannels struct {
	// connectionMap maps from user id to the user's active channels, keyed by
	// channel id so that deletion of a channel is O(1).
	// Each connectionMap entry is deleted once all of the user's channels are
	// closed. Every device of a user gets its own channel.
	connectionMap map[string]map[string]chan *model.Notification

	// Adding/Removing a connection must grab the write lock, while pushing
	// grabs the read lock.
	mu sync.RWMutex
}

func NewSignalChannels() *SignalChannels {
	return &SignalChannels{
		connectionMap: make(map[string]map[string]chan *model.Notification),
	}
}

// cleanUp a single connection when the context terminates. If all of a
// user's connections terminated, clean up the user's top-level entry as well.
func (sc *SignalChannels) cleanUp(ctx context.Context, chId string, userId string) {
	<-ctx.Done()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	delete(sc.connectionMap[userId], chId)
	if len(sc.connectionMap[userId]) == 0 {
		delete(sc.connectionMap, userId)
	}
}

// AddNewConnection registers a channel for userId that lives as long as ctx.
// Thread-safe
func (sc *SignalChannels) AddNewConnection(ctx context.Context, userId string) (<-chan *model.Notification, string) {
	chId := "signal_channel_" + uuid.New().String()
	ch := make(chan *model.Notification, ChannelBufferSize)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, ok := sc.connectionMap[userId]; !ok {
		sc.connectionMap[userId] = make(map[string]chan *model.Notification)
	}
	sc.connectionMap[userId][chId] = ch

	// Spin up a background garbage collector.
	go sc.cleanUp(ctx, chId, userId)

	return ch, chId
}

// Thread-safe
func (sc *SignalChannels) GetActiveConnectionsCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	count := 0
	for _, mp := range sc.connectionMap {
		count += len(mp)
	}
	return count
}

// PushToUser hands n to every channel of userId. A channel whose buffer is
// full misses n. Thread-safe
func (sc *SignalChannels) PushToUser(n *model.Notification, userId string) error {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	userChannels, ok := sc.connectionMap[userId]
	if !ok {
		return ErrNoActiveConnection
	}
	for chId, ch := range userChannels {
		select {
		case ch <- n:
		default:
			Logger.Log.Warnf("channel %s of user %s is full, drop notification %s", chId, userId, n.Id)
		}
	}
	return nil
}

// Deliver pushes n to its recipient if they are connected to this process.
func (sc *SignalChannels) Deliver(ctx context.Context, n *model.Notification) error {
	err := sc.PushToUser(n, n.UserID)
	if errors.Is(err, ErrNoActiveConnection) {
		return nil
	}
	return err
}
