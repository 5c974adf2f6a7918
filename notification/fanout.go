// Package notification derives and persists the notifications produced by
// engagement and comment events, and lists them per recipient.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// TopicNotificationCreated carries every persisted notification, JSON encoded.
const TopicNotificationCreated = "notification.created"

// Fanout persists notifications. Emit is a pure append: no deduplication, no
// batching and no delivery confirmation.
type Fanout struct {
	notifications store.NotificationStore
	users         store.UserStore

	// Optional. Persisted notifications are published here for live delivery.
	publisher message.Publisher
}

func NewFanout(notifications store.NotificationStore, users store.UserStore, publisher message.Publisher) *Fanout {
	return &Fanout{
		notifications: notifications,
		users:         users,
		publisher:     publisher,
	}
}

// ShouldNotify tells whether an engagement of kind by actorId produces a
// notification for recipientId.
//
//	like, comment: unless the actor is the recipient
//	subscribe:     always, self subscription is rejected before this point
//	unlike, view:  never
func ShouldNotify(kind model.EngagementKind, actorId string, recipientId string) bool {
	switch kind {
	case model.EngagementLike, model.EngagementComment:
		return actorId != recipientId
	case model.EngagementSubscribe:
		return true
	}
	return false
}

func LikeMessage(likerUsername string, videoTitle string) string {
	return fmt.Sprintf("👍 %s liked your video: \"%s\"", likerUsername, videoTitle)
}

func CommentMessage(commenterUsername string, videoTitle string) string {
	return fmt.Sprintf("💬 %s commented on your video: \"%s\"", commenterUsername, videoTitle)
}

func SubscribeMessage(subscriberUsername string) string {
	return fmt.Sprintf("%s subscribed to your channel", subscriberUsername)
}

// VideoTarget and UserTarget build the deep link a notification points to.
func VideoTarget(videoId string) map[string]string {
	return map[string]string{"videoId": videoId}
}

func UserTarget(username string) map[string]string {
	return map[string]string{"username": username}
}

// Emit persists a notification for recipientUserId with a server assigned
// timestamp and returns it.
func (f *Fanout) Emit(ctx context.Context, recipientUserId string, kind model.NotificationKind, msg string, target map[string]string) (*model.Notification, error) {
	notification := &model.Notification{
		Id:      uuid.New().String(),
		UserID:  recipientUserId,
		Kind:    kind,
		Message: msg,
	}
	if len(target) > 0 {
		raw, err := json.Marshal(target)
		if err != nil {
			return nil, errors.Wrap(err, "encode notification target")
		}
		notification.Target = datatypes.JSON(raw)
	}

	if err := f.notifications.CreateNotification(ctx, notification); err != nil {
		return nil, errors.Wrap(err, "emit notification")
	}

	f.publish(notification)
	return notification, nil
}

// publish is best effort, polling ListForUser stays the source of truth.
func (f *Fanout) publish(notification *model.Notification) {
	if f.publisher == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		Logger.Log.Errorf("cannot encode notification %s: %v", notification.Id, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.publisher.Publish(TopicNotificationCreated, msg); err != nil {
		Logger.Log.Errorf("cannot publish notification %s: %v", notification.Id, err)
	}
}

// ListForUser returns the full notification history of username, newest
// first.
func (f *Fanout) ListForUser(ctx context.Context, username string) ([]*model.Notification, error) {
	user, err := f.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "resolve notification recipient")
	}
	return f.notifications.ListNotificationsByUser(ctx, user.Id)
}
