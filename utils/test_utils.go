package utils

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/store"
	"github.com/stretchr/testify/require"
)

// create user with username directly in the store, do sanity checks and
// returns it. Email is derived from the username.
func TestCreateUserAndValidate(t *testing.T, s store.UserStore, username string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Id:        uuid.New().String(),
		FirstName: "first_" + username,
		LastName:  "last_" + username,
		Username:  username,
		Email:     fmt.Sprintf("%s@streemza.test", username),
		Password:  "not-a-real-hash",
		Role:      role,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	got, err := s.GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	require.Equal(t, user.Id, got.Id)
	require.Equal(t, 0, len(got.Subscribers))
	require.False(t, got.CreatedAt.IsZero())

	return got
}

// create video owned by creatorId, do sanity checks and returns it
func TestCreateVideoAndValidate(t *testing.T, s store.VideoStore, creatorId string, title string) *model.Video {
	t.Helper()
	video := &model.Video{
		Id:        uuid.New().String(),
		Title:     title,
		Genre:     "Comedy",
		AgeRating: "PG",
		VideoUrl:  "videos/" + title + ".mp4",
		CreatorID: creatorId,
	}
	require.NoError(t, s.CreateVideo(context.Background(), video))

	got, err := s.GetVideoById(context.Background(), video.Id)
	require.NoError(t, err)
	require.Equal(t, title, got.Title)
	require.Equal(t, creatorId, got.CreatorID)
	require.Equal(t, 0, len(got.Likes))
	require.Equal(t, 0, len(got.Unlikes))
	require.Equal(t, int64(0), got.Views)

	return got
}
