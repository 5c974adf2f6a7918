// Package comment stores comments on videos and notifies the video's creator.
package comment

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/murtaza309/streemza/engagement"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/notification"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/pkg/errors"
)

type Service struct {
	comments store.CommentStore
	videos   store.VideoStore
	users    store.UserStore
	fanout   *notification.Fanout

	// Optional, receives EngagementEvents.
	publisher message.Publisher
}

func NewService(
	comments store.CommentStore,
	videos store.VideoStore,
	users store.UserStore,
	fanout *notification.Fanout,
	publisher message.Publisher,
) *Service {
	return &Service{
		comments:  comments,
		videos:    videos,
		users:     users,
		fanout:    fanout,
		publisher: publisher,
	}
}

// PostComment stores text as a comment by actor on videoId and notifies the
// video's creator.
//
// The comment is written before the video is looked up. A comment on a
// missing video therefore stays stored even though ErrVideoNotFound is
// returned, and a failing notification does not remove it either.
func (s *Service) PostComment(ctx context.Context, videoId string, actor engagement.Actor, text string) (*model.Comment, error) {
	if text == "" || actor.UserId == "" {
		return nil, utils.ErrMissingTextOrUser
	}

	comment := &model.Comment{
		Id:      uuid.New().String(),
		Text:    text,
		UserID:  actor.UserId,
		VideoID: videoId,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, errors.Wrap(err, "create comment")
	}

	video, err := s.videos.GetVideoById(ctx, videoId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			Logger.Log.Warnf("comment %s stored for missing video %s", comment.Id, videoId)
			return nil, utils.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "load commented video")
	}

	engagement.PublishEvent(s.publisher, model.EngagementEvent{
		Kind:      model.EngagementComment,
		VideoId:   video.Id,
		CreatorId: video.CreatorID,
		ActorId:   actor.UserId,
		Changed:   true,
	})

	if !notification.ShouldNotify(model.EngagementComment, actor.UserId, video.CreatorID) {
		return comment, nil
	}

	commenter, err := s.users.GetUserById(ctx, actor.UserId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			Logger.Log.Warnf("commenter %s not found, skip notification", actor.UserId)
			return comment, nil
		}
		return nil, errors.Wrap(err, "resolve commenter")
	}

	_, err = s.fanout.Emit(
		ctx,
		video.CreatorID,
		model.NotificationKindComment,
		notification.CommentMessage(commenter.Username, video.Title),
		notification.VideoTarget(video.Id),
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the comments on videoId newest first, each with the
// public identity of its author. An author that no longer exists is left
// nil. A missing video simply has no comments.
func (s *Service) ListComments(ctx context.Context, videoId string) ([]*model.CommentWithUser, error) {
	comments, err := s.comments.ListCommentsByVideo(ctx, videoId)
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}

	authorIds := []string{}
	for _, c := range comments {
		if !utils.ContainsString(authorIds, c.UserID) {
			authorIds = append(authorIds, c.UserID)
		}
	}
	authors, err := s.users.GetUsersByIds(ctx, authorIds)
	if err != nil {
		return nil, errors.Wrap(err, "load comment authors")
	}
	byId := model.PublicUsersById(authors)

	res := make([]*model.CommentWithUser, 0, len(comments))
	for _, c := range comments {
		res = append(res, &model.CommentWithUser{Comment: c, User: byId[c.UserID]})
	}
	return res, nil
}
