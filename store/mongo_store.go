package store

import (
	"context"
	"time"

	"github.com/murtaza309/streemza/model"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	videosCollection        = "videos"
	commentsCollection      = "comments"
	notificationsCollection = "notifications"

	mongoConnectTimeout = 10 * time.Second
)

// MongoStore is the Store backed by MongoDB, one document per entity. Ids are
// the same uuid strings the other stores use, stored as _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = &MongoStore{}

// NewMongoStore connects to uri, selects database dbName and makes sure the
// unique and ordering indexes exist.
func NewMongoStore(ctx context.Context, uri string, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}

	s := &MongoStore{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}
	_, err = s.db.Collection(commentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(err, "create comment indexes")
	}
	_, err = s.db.Collection(notificationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return errors.Wrap(err, "create notification indexes")
}

// Database exposes the underlying database, tests use it to drop everything.
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translateMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRecordNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		return errors.Wrap(translateMongoError(err), "create user")
	}
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

func (s *MongoStore) GetUserById(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUsersByIds(ctx context.Context, ids []string) ([]*model.User, error) {
	users := []*model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "get users by ids")
	}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	res, err := s.db.Collection(usersCollection).UpdateOne(ctx, bson.M{"_id": user.Id}, bson.M{"$set": bson.M{
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"dateOfBirth": user.DateOfBirth,
		"username":    user.Username,
		"email":       user.Email,
		"password":    user.Password,
		"role":        user.Role,
		"profilePic":  user.ProfilePic,
		"updatedAt":   user.UpdatedAt,
	}})
	if err != nil {
		return errors.Wrap(translateMongoError(err), "update user")
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *MongoStore) SaveSubscribers(ctx context.Context, user *model.User) error {
	res, err := s.db.Collection(usersCollection).UpdateOne(ctx, bson.M{"_id": user.Id}, bson.M{"$set": bson.M{
		"subscribers": user.Subscribers,
		"updatedAt":   time.Now(),
	}})
	if err != nil {
		return errors.Wrap(err, "save subscribers")
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *MongoStore) CreateVideo(ctx context.Context, video *model.Video) error {
	now := time.Now()
	video.CreatedAt, video.UpdatedAt = now, now
	if _, err := s.db.Collection(videosCollection).InsertOne(ctx, video); err != nil {
		return errors.Wrap(translateMongoError(err), "create video")
	}
	return nil
}

func (s *MongoStore) GetVideoById(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	if err := s.db.Collection(videosCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, translateMongoError(err)
	}
	return &video, nil
}

func (s *MongoStore) ListVideos(ctx context.Context) ([]*model.Video, error) {
	videos := []*model.Video{}
	cursor, err := s.db.Collection(videosCollection).Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, errors.Wrap(err, "list videos")
	}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, errors.Wrap(err, "decode videos")
	}
	return videos, nil
}

func (s *MongoStore) SaveVideoReactions(ctx context.Context, video *model.Video) error {
	res, err := s.db.Collection(videosCollection).UpdateOne(ctx, bson.M{"_id": video.Id}, bson.M{"$set": bson.M{
		"likes":     video.Likes,
		"unlikes":   video.Unlikes,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return errors.Wrap(err, "save video reactions")
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *MongoStore) IncrementVideoViews(ctx context.Context, id string) (int64, error) {
	var video model.Video
	err := s.db.Collection(videosCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrRecordNotFound
		}
		return 0, errors.Wrap(err, "increment video views")
	}
	return video.Views, nil
}

func (s *MongoStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	if _, err := s.db.Collection(commentsCollection).InsertOne(ctx, comment); err != nil {
		return errors.Wrap(err, "create comment")
	}
	return nil
}

func (s *MongoStore) ListCommentsByVideo(ctx context.Context, videoId string) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	cursor, err := s.db.Collection(commentsCollection).Find(ctx, bson.M{"video": videoId}, newestFirst())
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, errors.Wrap(err, "decode comments")
	}
	return comments, nil
}

func (s *MongoStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if _, err := s.db.Collection(notificationsCollection).InsertOne(ctx, notification); err != nil {
		return errors.Wrap(err, "create notification")
	}
	return nil
}

func (s *MongoStore) ListNotificationsByUser(ctx context.Context, userId string) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	cursor, err := s.db.Collection(notificationsCollection).Find(ctx, bson.M{"user": userId}, newestFirst())
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, errors.Wrap(err, "decode notifications")
	}
	return notifications, nil
}
