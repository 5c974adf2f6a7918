// Package engagement applies likes, unlikes, subscriptions and views to
// videos and users.
//
// Like, Unlike and Subscribe are read-modify-write sequences on a single
// document: load, mutate the array in memory, write the array back. Nothing
// guards the window between the read and the write, so two concurrent
// mutations of the same document may lose one of them. Setting
// Config.SerializeReactions runs each sequence under a per-document lock,
// which closes the window for requests served by the same process only.
package engagement

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/notification"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/pkg/errors"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserId string
}

type Config struct {
	// SerializeReactions makes read-modify-write sequences on the same video
	// or creator mutually exclusive within this process.
	SerializeReactions bool
}

type Engine struct {
	videos    store.VideoStore
	users     store.UserStore
	fanout    *notification.Fanout
	publisher message.Publisher

	// nil unless Config.SerializeReactions
	locks *keyedMutex
}

// NewEngine creates an Engine. publisher may be nil, in which case no
// engagement events are published.
func NewEngine(
	videos store.VideoStore,
	users store.UserStore,
	fanout *notification.Fanout,
	publisher message.Publisher,
	config Config,
) *Engine {
	e := &Engine{
		videos:    videos,
		users:     users,
		fanout:    fanout,
		publisher: publisher,
	}
	if config.SerializeReactions {
		e.locks = newKeyedMutex()
	}
	return e
}

func (e *Engine) lock(key string) func() {
	if e.locks == nil {
		return func() {}
	}
	return e.locks.Lock(key)
}

func (e *Engine) loadVideo(ctx context.Context, videoId string) (*model.Video, error) {
	video, err := e.videos.GetVideoById(ctx, videoId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "load video")
	}
	return video, nil
}

// Like records actor as liking the video and returns the number of likes.
// Liking again is a successful no-op. A new like removes the actor from the
// unlikes and notifies the creator unless the actor is the creator.
func (e *Engine) Like(ctx context.Context, videoId string, actor Actor) (int, error) {
	if actor.UserId == "" {
		return 0, utils.ErrMissingUserId
	}

	unlock := e.lock("video:" + videoId)
	defer unlock()

	video, err := e.loadVideo(ctx, videoId)
	if err != nil {
		return 0, err
	}

	added := false
	if !utils.ContainsString(video.Likes, actor.UserId) {
		video.Likes = append(video.Likes, actor.UserId)
		video.Unlikes = utils.RemoveString(video.Unlikes, actor.UserId)
		if err := e.videos.SaveVideoReactions(ctx, video); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return 0, utils.ErrVideoNotFound
			}
			return 0, errors.Wrap(err, "save like")
		}
		added = true
	}

	e.publishEvent(model.EngagementEvent{
		Kind:      model.EngagementLike,
		VideoId:   video.Id,
		CreatorId: video.CreatorID,
		ActorId:   actor.UserId,
		Changed:   added,
	})

	if added && notification.ShouldNotify(model.EngagementLike, actor.UserId, video.CreatorID) {
		if err := e.notifyLike(ctx, video, actor); err != nil {
			return 0, err
		}
	}

	return len(video.Likes), nil
}

func (e *Engine) notifyLike(ctx context.Context, video *model.Video, actor Actor) error {
	liker, err := e.users.GetUserById(ctx, actor.UserId)
	if err != nil {
		// An unknown liker still counts as a like, there is just nobody to name.
		if errors.Is(err, store.ErrRecordNotFound) {
			Logger.Log.Warnf("liker %s of video %s not found, skip notification", actor.UserId, video.Id)
			return nil
		}
		return errors.Wrap(err, "resolve liker")
	}
	_, err = e.fanout.Emit(
		ctx,
		video.CreatorID,
		model.NotificationKindLike,
		notification.LikeMessage(liker.Username, video.Title),
		notification.VideoTarget(video.Id),
	)
	return err
}

// Unlike records actor as disliking the video and returns the number of
// unlikes. It mirrors Like but never notifies anyone.
func (e *Engine) Unlike(ctx context.Context, videoId string, actor Actor) (int, error) {
	if actor.UserId == "" {
		return 0, utils.ErrMissingUserId
	}

	unlock := e.lock("video:" + videoId)
	defer unlock()

	video, err := e.loadVideo(ctx, videoId)
	if err != nil {
		return 0, err
	}

	added := false
	if !utils.ContainsString(video.Unlikes, actor.UserId) {
		video.Unlikes = append(video.Unlikes, actor.UserId)
		video.Likes = utils.RemoveString(video.Likes, actor.UserId)
		if err := e.videos.SaveVideoReactions(ctx, video); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return 0, utils.ErrVideoNotFound
			}
			return 0, errors.Wrap(err, "save unlike")
		}
		added = true
	}

	e.publishEvent(model.EngagementEvent{
		Kind:      model.EngagementUnlike,
		VideoId:   video.Id,
		CreatorId: video.CreatorID,
		ActorId:   actor.UserId,
		Changed:   added,
	})

	return len(video.Unlikes), nil
}

// Subscribe adds actor to the subscribers of the creator with username
// creatorUsername and notifies the creator. Subscribing again is a successful
// no-op without notification. It returns whether a subscription was added.
func (e *Engine) Subscribe(ctx context.Context, creatorUsername string, actor Actor) (bool, error) {
	if actor.UserId == "" {
		return false, utils.ErrMissingUserId
	}

	creator, err := e.users.GetUserByUsername(ctx, creatorUsername)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, utils.ErrCreatorNotFound
		}
		return false, errors.Wrap(err, "resolve creator")
	}
	if creator.Id == actor.UserId {
		return false, utils.ErrSelfSubscribe
	}

	subscriber, err := e.users.GetUserById(ctx, actor.UserId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, utils.ErrSubscriberNotFound
		}
		return false, errors.Wrap(err, "resolve subscriber")
	}

	unlock := e.lock("user:" + creator.Id)
	defer unlock()

	// Re-read under the lock so a serialized run sees the previous writer.
	if e.locks != nil {
		if creator, err = e.users.GetUserById(ctx, creator.Id); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return false, utils.ErrCreatorNotFound
			}
			return false, errors.Wrap(err, "reload creator")
		}
	}

	if utils.ContainsString(creator.Subscribers, actor.UserId) {
		e.publishEvent(model.EngagementEvent{
			Kind:      model.EngagementSubscribe,
			CreatorId: creator.Id,
			ActorId:   actor.UserId,
		})
		return false, nil
	}

	creator.Subscribers = append(creator.Subscribers, actor.UserId)
	if err := e.users.SaveSubscribers(ctx, creator); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, utils.ErrCreatorNotFound
		}
		return false, errors.Wrap(err, "save subscribers")
	}

	e.publishEvent(model.EngagementEvent{
		Kind:      model.EngagementSubscribe,
		CreatorId: creator.Id,
		ActorId:   actor.UserId,
		Changed:   true,
	})

	if notification.ShouldNotify(model.EngagementSubscribe, actor.UserId, creator.Id) {
		_, err := e.fanout.Emit(
			ctx,
			creator.Id,
			model.NotificationKindSubscribe,
			notification.SubscribeMessage(subscriber.Username),
			notification.UserTarget(subscriber.Username),
		)
		if err != nil {
			return true, err
		}
	}
	return true, nil
}

// publishEvent is best effort, a failed publish only loses a metric.
func (e *Engine) publishEvent(event model.EngagementEvent) {
	PublishEvent(e.publisher, event)
}

// PublishEvent encodes event and publishes it on TopicEngagementEvent. A nil
// publisher is a no-op.
func PublishEvent(publisher message.Publisher, event model.EngagementEvent) {
	if publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		Logger.Log.Errorf("cannot encode engagement event: %v", err)
		return
	}
	if err := publisher.Publish(model.TopicEngagementEvent, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		Logger.Log.Errorf("cannot publish %s event: %v", event.Kind, err)
	}
}
