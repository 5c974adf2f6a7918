// Package catalog uploads videos and lists them with their creators.
package catalog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/murtaza309/streemza/media"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	"github.com/pkg/errors"
)

var genres = []string{
	"Comedy",
	"Drama",
	"Action",
	"Horror",
	"Romance",
	"Documentary",
	"Animation",
	"Sci-Fi",
	"Fantasy",
	"Thriller",
}

// Genres returns the fixed list of genres a video can be filed under.
func Genres() []string {
	return append([]string(nil), genres...)
}

type UploadInput struct {
	Title     string `validate:"required"`
	Publisher string
	Genre     string `validate:"required"`
	AgeRating string `validate:"required"`
	CreatorId string `validate:"required"`

	FileName    string
	ContentType string
	// nil when no file was sent
	File io.Reader
}

type Catalog struct {
	videos store.VideoStore
	users  store.UserStore
	media  media.MediaStore

	// overridable in tests
	now func() time.Time
}

func NewCatalog(videos store.VideoStore, users store.UserStore, mediaStore media.MediaStore) *Catalog {
	return &Catalog{
		videos: videos,
		users:  users,
		media:  mediaStore,
		now:    time.Now,
	}
}

// Upload stores the file and creates a video with no reactions and no views.
func (c *Catalog) Upload(ctx context.Context, input UploadInput) (*model.Video, error) {
	if input.File == nil {
		return nil, utils.ErrMissingVideoFile
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !media.IsAllowedFile(input.FileName) {
		return nil, utils.ErrFileType
	}

	if _, err := c.users.GetUserById(ctx, input.CreatorId); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrCreatorNotFound
		}
		return nil, errors.Wrap(err, "resolve video creator")
	}

	key, err := c.media.Store(ctx, media.NewKey(media.VideoPrefix, input.FileName, c.now()), input.File, input.ContentType)
	if err != nil {
		return nil, errors.Wrap(err, "store video file")
	}

	video := &model.Video{
		Id:        uuid.New().String(),
		Title:     input.Title,
		Publisher: input.Publisher,
		Genre:     input.Genre,
		AgeRating: input.AgeRating,
		VideoUrl:  c.media.GetUrlFromKey(key),
		CreatorID: input.CreatorId,
		Likes:     pq.StringArray{},
		Unlikes:   pq.StringArray{},
	}
	if err := c.videos.CreateVideo(ctx, video); err != nil {
		return nil, errors.Wrap(err, "create video")
	}
	return video, nil
}

// List returns every video newest first.
func (c *Catalog) List(ctx context.Context) ([]*model.VideoWithCreator, error) {
	videos, err := c.videos.ListVideos(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list videos")
	}

	creatorIds := []string{}
	for _, v := range videos {
		if !utils.ContainsString(creatorIds, v.CreatorID) {
			creatorIds = append(creatorIds, v.CreatorID)
		}
	}
	creators, err := c.users.GetUsersByIds(ctx, creatorIds)
	if err != nil {
		return nil, errors.Wrap(err, "load video creators")
	}
	byId := model.PublicUsersById(creators)

	res := make([]*model.VideoWithCreator, 0, len(videos))
	for _, v := range videos {
		res = append(res, &model.VideoWithCreator{Video: v, Creator: byId[v.CreatorID]})
	}
	return res, nil
}

func (c *Catalog) Get(ctx context.Context, videoId string) (*model.VideoWithCreator, error) {
	video, err := c.videos.GetVideoById(ctx, videoId)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrVideoNotFound
		}
		return nil, errors.Wrap(err, "load video")
	}

	creator, err := c.users.GetUserById(ctx, video.CreatorID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load video creator")
	}
	return &model.VideoWithCreator{Video: video, Creator: creator.Public()}, nil
}
