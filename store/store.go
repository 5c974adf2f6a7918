// Package store persists users, videos, comments and notifications.
//
// Every implementation follows the same consistency contract:
//   - Reads return a detached snapshot of the document.
//   - SaveVideoReactions and SaveSubscribers write back the whole array fields
//     of the snapshot they are given. There is no version check, so two
//     concurrent read-modify-write sequences on the same document can lose an
//     update (last writer wins).
//   - IncrementVideoViews is a single atomic in-place increment.
//   - Nothing spans more than one document; there are no transactions.
package store

import (
	"context"
	"errors"

	"github.com/murtaza309/streemza/model"
)

// ErrRecordNotFound is returned by lookups by primary key or unique field
// when nothing matches.
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateKey is returned when a create violates a unique field.
var ErrDuplicateKey = errors.New("duplicate key")

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserById(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUsersByIds returns the users found, in no particular order. Missing
	// ids are skipped.
	GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error)
	// UpdateUser overwrites the profile fields of an existing user. The
	// subscribers array is left untouched.
	UpdateUser(ctx context.Context, user *model.User) error
	// SaveSubscribers writes user.Subscribers as a whole.
	SaveSubscribers(ctx context.Context, user *model.User) error
}

type VideoStore interface {
	CreateVideo(ctx context.Context, video *model.Video) error
	GetVideoById(ctx context.Context, id string) (*model.Video, error)
	// ListVideos returns all videos newest first.
	ListVideos(ctx context.Context) ([]*model.Video, error)
	// SaveVideoReactions writes video.Likes and video.Unlikes as a whole in a
	// single write.
	SaveVideoReactions(ctx context.Context, video *model.Video) error
	// IncrementVideoViews atomically adds one to the view counter and returns
	// the new value.
	IncrementVideoViews(ctx context.Context, id string) (int64, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	// ListCommentsByVideo returns comments of a video newest first.
	ListCommentsByVideo(ctx context.Context, videoId string) ([]*model.Comment, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	// ListNotificationsByUser returns notifications of a recipient newest first.
	ListNotificationsByUser(ctx context.Context, userId string) ([]*model.Notification, error)
}

// Store is the full entity store.
type Store interface {
	UserStore
	VideoStore
	CommentStore
	NotificationStore
}
