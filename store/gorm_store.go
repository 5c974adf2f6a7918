package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/murtaza309/streemza/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// postgres unique_violation
const uniqueViolationCode = "23505"

// GormStore is the Store backed by postgres through gorm. Array fields are
// postgres text[] columns so a video's reactions live in its own row, the
// same way they live inside a single document.
type GormStore struct {
	DB *gorm.DB
}

var _ Store = &GormStore{}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func translateGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	if strings.Contains(err.Error(), uniqueViolationCode) {
		return ErrDuplicateKey
	}
	return err
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(translateGormError(err), "create user")
	}
	return nil
}

func (s *GormStore) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserById(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *GormStore) GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error) {
	users := []*model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "get users by ids")
	}
	return users, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *model.User) error {
	res := s.DB.WithContext(ctx).
		Model(&model.User{Id: user.Id}).
		Select("first_name", "last_name", "date_of_birth", "username", "email", "password", "role", "profile_pic").
		Updates(user)
	if res.Error != nil {
		return errors.Wrap(translateGormError(res.Error), "update user")
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) SaveSubscribers(ctx context.Context, user *model.User) error {
	res := s.DB.WithContext(ctx).
		Model(&model.User{Id: user.Id}).
		Update("subscribers", user.Subscribers)
	if res.Error != nil {
		return errors.Wrap(res.Error, "save subscribers")
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) CreateVideo(ctx context.Context, video *model.Video) error {
	if err := s.DB.WithContext(ctx).Create(video).Error; err != nil {
		return errors.Wrap(translateGormError(err), "create video")
	}
	return nil
}

func (s *GormStore) GetVideoById(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &video, nil
}

func (s *GormStore) ListVideos(ctx context.Context) ([]*model.Video, error) {
	videos := []*model.Video{}
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&videos).Error; err != nil {
		return nil, errors.Wrap(err, "list videos")
	}
	return videos, nil
}

func (s *GormStore) SaveVideoReactions(ctx context.Context, video *model.Video) error {
	res := s.DB.WithContext(ctx).
		Model(&model.Video{Id: video.Id}).
		Updates(map[string]interface{}{
			"likes":   video.Likes,
			"unlikes": video.Unlikes,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "save video reactions")
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) IncrementVideoViews(ctx context.Context, id string) (int64, error) {
	var views int64
	row := s.DB.WithContext(ctx).
		Raw("UPDATE videos SET views = views + 1 WHERE id = ? RETURNING views", id).
		Row()
	if err := row.Scan(&views); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, errors.Wrap(err, "increment video views")
	}
	return views, nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	if err := s.DB.WithContext(ctx).Create(comment).Error; err != nil {
		return errors.Wrap(err, "create comment")
	}
	return nil
}

func (s *GormStore) ListCommentsByVideo(ctx context.Context, videoId string) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	if err := s.DB.WithContext(ctx).
		Where("video_id = ?", videoId).
		Order("created_at desc").
		Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	return comments, nil
}

func (s *GormStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if err := s.DB.WithContext(ctx).Create(notification).Error; err != nil {
		return errors.Wrap(err, "create notification")
	}
	return nil
}

func (s *GormStore) ListNotificationsByUser(ctx context.Context, userId string) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return notifications, nil
}
