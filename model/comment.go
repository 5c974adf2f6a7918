package model

import "time"

/*

Comment is an immutable piece of text a user left on a video

Id: primary key, uuid string
CreatedAt: time when entity is created, comments are listed by it descending
Text: comment body
UserID: author
VideoID: target video. Not a foreign key: a comment may be persisted before
	its video is found to be missing.

*/

type Comment struct {
	Id        string    `gorm:"primaryKey" bson:"_id" json:"_id"`
	CreatedAt time.Time `gorm:"index" bson:"createdAt" json:"createdAt"`
	Text      string    `gorm:"not null" bson:"text" json:"text"`
	UserID    string    `gorm:"not null" bson:"user" json:"userId"`
	VideoID   string    `gorm:"index;not null" bson:"video" json:"videoId"`
}

// CommentWithUser is a comment with its author resolved.
type CommentWithUser struct {
	*Comment
	User *PublicUser `json:"user"`
}
