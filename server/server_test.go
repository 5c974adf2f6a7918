package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/murtaza309/streemza/account"
	"github.com/murtaza309/streemza/catalog"
	"github.com/murtaza309/streemza/comment"
	"github.com/murtaza309/streemza/engagement"
	"github.com/murtaza309/streemza/live"
	"github.com/murtaza309/streemza/media"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/notification"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store   *store.FakeStore
	media   *media.FakeMediaStore
	tokens  *account.TokenIssuer
	signals *live.SignalChannels
	router  *gin.Engine
	creator *model.User
	viewer  *model.User
	video   *model.Video
}

func newTestEnv(t *testing.T, bypassAuth bool) *testEnv {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := store.NewFakeStore()
	m := media.NewFakeMediaStore()
	// Persistent so the pusher sees notifications published before it subscribed.
	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { bus.Close() })

	signals := live.NewSignalChannels()
	go live.NewPusher(live.PusherConfig{Name: "pusher"}, bus, signals).RunModule(ctx)

	tokens := account.NewTokenIssuer("test-secret", time.Hour)
	fanout := notification.NewFanout(s, s, bus)
	srv := &Server{
		Engagement:    engagement.NewEngine(s, s, fanout, bus, engagement.Config{}),
		Comments:      comment.NewService(s, s, s, fanout, bus),
		Notifications: fanout,
		Accounts:      account.NewAccounts(s, m, tokens),
		Catalog:       catalog.NewCatalog(s, s, m),
		Live:          signals,
		Tokens:        tokens,
		BypassAuth:    bypassAuth,
	}
	router := gin.New()
	srv.RegisterRoutes(router)

	creator := utils.TestCreateUserAndValidate(t, s, "creator", model.RoleCreator)
	viewer := utils.TestCreateUserAndValidate(t, s, "viewer", model.RoleConsumer)
	video := utils.TestCreateVideoAndValidate(t, s, creator.Id, "Cats")

	return &testEnv{
		store:   s,
		media:   m,
		tokens:  tokens,
		signals: signals,
		router:  router,
		creator: creator,
		viewer:  viewer,
		video:   video,
	}
}

func (e *testEnv) tokenFor(t *testing.T, user *model.User) string {
	token, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method string, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) liveConnections(t *testing.T) int {
	return e.signals.GetActiveConnectionsCount()
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestPing(t *testing.T) {
	e := newTestEnv(t, true)
	w := e.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "pong"}`, w.Body.String())
}

func TestLikeUnlikeViewOverHTTP(t *testing.T) {
	e := newTestEnv(t, true)
	path := "/api/videos/" + e.video.Id

	w := e.do(t, http.MethodPost, path+"/like", gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Liked the video", "likesCount": 1}`, w.Body.String())

	w = e.do(t, http.MethodPost, path+"/unlike", gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Unliked the video", "unlikesCount": 1}`, w.Body.String())

	for i := 1; i <= 3; i++ {
		w = e.do(t, http.MethodPut, "/api/videos/views/"+e.video.Id, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	var views struct {
		Message string `json:"message"`
		Views   int64  `json:"views"`
	}
	decode(t, w, &views)
	assert.Equal(t, int64(3), views.Views)

	w = e.do(t, http.MethodGet, "/api/notifications/creator", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var notifications []model.Notification
	decode(t, w, &notifications)
	require.Equal(t, 1, len(notifications))
	assert.Equal(t, "👍 viewer liked your video: \"Cats\"", notifications[0].Message)
}

func TestEngagementErrorsOverHTTP(t *testing.T) {
	e := newTestEnv(t, true)

	w := e.do(t, http.MethodPost, "/api/videos/missing/like", gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message": "Video not found"}`, w.Body.String())

	w = e.do(t, http.MethodPut, "/api/videos/views/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/subscribe/creator", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "Missing userId in body"}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/subscribe/creator", gin.H{"userId": e.creator.Id}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "You cannot subscribe to yourself"}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/subscribe/nobody", gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/subscribe/creator", gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Subscribed successfully"}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/notifications/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/"+e.video.Id+"/like", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentsOverHTTP(t *testing.T) {
	e := newTestEnv(t, true)
	path := "/api/videos/" + e.video.Id + "/comments"

	w := e.do(t, http.MethodPost, path, gin.H{"userId": e.viewer.Id, "text": "hello"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	var posted struct {
		Message string        `json:"message"`
		Comment model.Comment `json:"comment"`
	}
	decode(t, w, &posted)
	assert.Equal(t, "Comment added successfully", posted.Message)
	assert.Equal(t, "hello", posted.Comment.Text)

	w = e.do(t, http.MethodPost, path, gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "Comment text and user ID are required"}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/videos/missing/comments", gin.H{"userId": e.viewer.Id, "text": "lost"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var comments []struct {
		Text string            `json:"text"`
		User *model.PublicUser `json:"user"`
	}
	decode(t, w, &comments)
	require.Equal(t, 1, len(comments))
	assert.Equal(t, "hello", comments[0].Text)
	assert.Equal(t, "viewer", comments[0].User.Username)
}

func TestAuthenticatedIdentity(t *testing.T) {
	e := newTestEnv(t, false)
	path := "/api/videos/" + e.video.Id + "/like"
	token := e.tokenFor(t, e.viewer)

	w := e.do(t, http.MethodPost, path, gin.H{"userId": e.viewer.Id}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, path, gin.H{"userId": e.creator.Id}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The token alone identifies the actor.
	w = e.do(t, http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	v, err := e.store.GetVideoById(context.Background(), e.video.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{e.viewer.Id}, []string(v.Likes))

	w = e.do(t, http.MethodGet, "/api/notifications/creator", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(t, http.MethodGet, "/api/notifications/creator", nil, e.tokenFor(t, e.creator))
	assert.Equal(t, http.StatusOK, w.Code)

	// Public routes need no token.
	w = e.do(t, http.MethodGet, "/api/videos", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	e := newTestEnv(t, false)

	w := e.do(t, http.MethodPost, "/api/register", gin.H{
		"firstName":   "Ann",
		"lastName":    "Lee",
		"dateOfBirth": "1995-01-02",
		"username":    "ann",
		"email":       "ann@streemza.test",
		"password":    "Passw0rd!",
		"role":        "creator",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Passw0rd!")
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(t, http.MethodPost, "/api/register", gin.H{"username": "bad"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", gin.H{"email": "ann@streemza.test", "password": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", gin.H{"username": "ann", "password": "Passw0rd!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	decode(t, w, &login)
	assert.Equal(t, model.RoleCreator, login.User.Role)

	w = e.do(t, http.MethodGet, "/api/users/username/ann", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/api/users/"+login.User.Id, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/api/users/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("firstName", "Annie"))
	part, err := form.CreateFormFile("profilePic", "me.png")
	require.NoError(t, err)
	part.Write([]byte("png"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/ann", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.User
	decode(t, rec, &updated)
	assert.Equal(t, "Annie", updated.FirstName)
	assert.Equal(t, "Lee", updated.LastName)
	assert.True(t, strings.HasPrefix(updated.ProfilePic, "fake://profile_pics/"))

	// Somebody else's profile.
	req = httptest.NewRequest(http.MethodPut, "/api/users/creator", strings.NewReader("firstName=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadAndListVideos(t *testing.T) {
	e := newTestEnv(t, true)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	for k, v := range map[string]string{
		"title":     "Dogs",
		"genre":     "Comedy",
		"ageRating": "PG",
		"creatorId": e.creator.Id,
	} {
		require.NoError(t, form.WriteField(k, v))
	}
	part, err := form.CreateFormFile("video", "dogs.mp4")
	require.NoError(t, err)
	part.Write([]byte("woof"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var uploaded struct {
		Video model.Video `json:"video"`
	}
	decode(t, rec, &uploaded)
	assert.Equal(t, "Dogs", uploaded.Video.Title)

	w := e.do(t, http.MethodPost, "/api/videos/upload", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "No video file uploaded"}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/videos", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var videos []struct {
		Id      string            `json:"_id"`
		Creator *model.PublicUser `json:"creator"`
	}
	decode(t, w, &videos)
	require.Equal(t, 2, len(videos))
	assert.Equal(t, "creator", videos[0].Creator.Username)

	w = e.do(t, http.MethodGet, "/api/videos/"+uploaded.Video.Id, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/api/videos/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/genres", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var genres []string
	decode(t, w, &genres)
	assert.Equal(t, catalog.Genres(), genres)
}

func TestLiveNotifications(t *testing.T) {
	e := newTestEnv(t, true)
	ts := httptest.NewServer(e.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/notifications/creator/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the stream to be registered before engaging.
	deadline := time.Now().Add(time.Second)
	for e.liveConnections(t) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	w := e.do(t, http.MethodPost, "/api/videos/"+e.video.Id+"/comments", gin.H{"userId": e.viewer.Id, "text": "hi"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got model.Notification
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, e.creator.Id, got.UserID)
	assert.Equal(t, model.NotificationKindComment, got.Kind)

	resp, err := http.Get(ts.URL + "/api/notifications/nobody/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
