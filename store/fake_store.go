package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/murtaza309/streemza/model"
)

// FakeStore is an in-memory Store for tests and local runs without a
// database. It honors the same contract as the real stores: reads hand out
// copies, array saves overwrite whole fields, view increments are atomic.
type FakeStore struct {
	m   sync.RWMutex
	seq int64

	users         map[string]*model.User
	videos        map[string]*model.Video
	comments      []fakeRow
	notifications []fakeRow

	// When set, CreateNotification fails with this error without writing.
	FailCreateNotification error
}

type fakeRow struct {
	seq          int64
	comment      *model.Comment
	notification *model.Notification
}

var _ Store = &FakeStore{}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:  make(map[string]*model.User),
		videos: make(map[string]*model.Video),
	}
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Subscribers = append(pq.StringArray(nil), u.Subscribers...)
	return &c
}

func copyVideo(v *model.Video) *model.Video {
	c := *v
	c.Likes = append(pq.StringArray(nil), v.Likes...)
	c.Unlikes = append(pq.StringArray(nil), v.Unlikes...)
	return &c
}

func (s *FakeStore) stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

func (s *FakeStore) CreateUser(ctx context.Context, user *model.User) error {
	s.m.Lock()
	defer s.m.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicateKey
		}
	}
	if _, ok := s.users[user.Id]; ok {
		return ErrDuplicateKey
	}
	s.stamp(&user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	s.users[user.Id] = copyUser(user)
	return nil
}

func (s *FakeStore) GetUserById(ctx context.Context, id string) (*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyUser(u), nil
}

func (s *FakeStore) findUser(match func(u *model.User) bool) (*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *FakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.Username == username })
}

func (s *FakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.Email == email })
}

func (s *FakeStore) GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	users := []*model.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (s *FakeStore) UpdateUser(ctx context.Context, user *model.User) error {
	s.m.Lock()
	defer s.m.Unlock()

	existing, ok := s.users[user.Id]
	if !ok {
		return ErrRecordNotFound
	}
	for id, u := range s.users {
		if id != user.Id && (u.Username == user.Username || u.Email == user.Email) {
			return ErrDuplicateKey
		}
	}
	updated := copyUser(user)
	updated.Subscribers = existing.Subscribers
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	s.users[user.Id] = updated
	return nil
}

func (s *FakeStore) SaveSubscribers(ctx context.Context, user *model.User) error {
	s.m.Lock()
	defer s.m.Unlock()

	existing, ok := s.users[user.Id]
	if !ok {
		return ErrRecordNotFound
	}
	existing.Subscribers = append(pq.StringArray(nil), user.Subscribers...)
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *FakeStore) CreateVideo(ctx context.Context, video *model.Video) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.videos[video.Id]; ok {
		return ErrDuplicateKey
	}
	s.stamp(&video.CreatedAt)
	video.UpdatedAt = video.CreatedAt
	s.seq++
	s.videos[video.Id] = copyVideo(video)
	return nil
}

func (s *FakeStore) GetVideoById(ctx context.Context, id string) (*model.Video, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyVideo(v), nil
}

func (s *FakeStore) ListVideos(ctx context.Context) ([]*model.Video, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	videos := []*model.Video{}
	for _, v := range s.videos {
		videos = append(videos, copyVideo(v))
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}

func (s *FakeStore) SaveVideoReactions(ctx context.Context, video *model.Video) error {
	s.m.Lock()
	defer s.m.Unlock()

	existing, ok := s.videos[video.Id]
	if !ok {
		return ErrRecordNotFound
	}
	existing.Likes = append(pq.StringArray(nil), video.Likes...)
	existing.Unlikes = append(pq.StringArray(nil), video.Unlikes...)
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *FakeStore) IncrementVideoViews(ctx context.Context, id string) (int64, error) {
	s.m.Lock()
	defer s.m.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return 0, ErrRecordNotFound
	}
	v.Views++
	return v.Views, nil
}

func (s *FakeStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.stamp(&comment.CreatedAt)
	c := *comment
	s.seq++
	s.comments = append(s.comments, fakeRow{seq: s.seq, comment: &c})
	return nil
}

// newestFirstRows sorts by creation time descending, falling back to insertion
// order for rows created within the same clock tick.
func newestFirstRows(rows []fakeRow, createdAt func(r fakeRow) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := createdAt(rows[i]), createdAt(rows[j])
		if ti.Equal(tj) {
			return rows[i].seq > rows[j].seq
		}
		return ti.After(tj)
	})
}

func (s *FakeStore) ListCommentsByVideo(ctx context.Context, videoId string) ([]*model.Comment, error) {
	s.m.RLock()
	rows := []fakeRow{}
	for _, r := range s.comments {
		if r.comment.VideoID == videoId {
			rows = append(rows, r)
		}
	}
	s.m.RUnlock()

	newestFirstRows(rows, func(r fakeRow) time.Time { return r.comment.CreatedAt })
	comments := []*model.Comment{}
	for _, r := range rows {
		c := *r.comment
		comments = append(comments, &c)
	}
	return comments, nil
}

func (s *FakeStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.FailCreateNotification != nil {
		return s.FailCreateNotification
	}
	s.stamp(&notification.CreatedAt)
	n := *notification
	s.seq++
	s.notifications = append(s.notifications, fakeRow{seq: s.seq, notification: &n})
	return nil
}

func (s *FakeStore) ListNotificationsByUser(ctx context.Context, userId string) ([]*model.Notification, error) {
	s.m.RLock()
	rows := []fakeRow{}
	for _, r := range s.notifications {
		if r.notification.UserID == userId {
			rows = append(rows, r)
		}
	}
	s.m.RUnlock()

	newestFirstRows(rows, func(r fakeRow) time.Time { return r.notification.CreatedAt })
	notifications := []*model.Notification{}
	for _, r := range rows {
		n := *r.notification
		notifications = append(notifications, &n)
	}
	return notifications, nil
}

// CommentCount returns the number of stored comments across all videos.
func (s *FakeStore) CommentCount() int {
	s.m.RLock()
	defer s.m.RUnlock()
	return len(s.comments)
}
