package model

import (
	"time"

	"github.com/lib/pq"
)

/*

Video is an uploaded media item

Id: primary key, uuid string
CreatedAt: time when entity is created
UpdatedAt: time when entity is last saved

Title: display title
Publisher: optional publisher label
Genre: one of the catalog genres
AgeRating: free text rating, e.g. "PG-13"
VideoUrl: opaque media reference returned by the media store
CreatorID: owning user, "belongs-to" relation
Likes: ids of users who liked the video
Unlikes: ids of users who disliked the video. A user id is in at most one of
	Likes and Unlikes.
Views: playback counter, only ever incremented in place by the store

*/

type Video struct {
	Id        string         `gorm:"primaryKey" bson:"_id" json:"_id"`
	CreatedAt time.Time      `gorm:"index" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
	Title     string         `gorm:"not null" bson:"title" json:"title"`
	Publisher string         `bson:"publisher,omitempty" json:"publisher,omitempty"`
	Genre     string         `gorm:"not null" bson:"genre" json:"genre"`
	AgeRating string         `gorm:"not null" bson:"ageRating" json:"ageRating"`
	VideoUrl  string         `gorm:"not null" bson:"videoUrl" json:"videoUrl"`
	CreatorID string         `gorm:"index;not null" bson:"creator" json:"creatorId"`
	Likes     pq.StringArray `gorm:"type:text[]" bson:"likes" json:"likes"`
	Unlikes   pq.StringArray `gorm:"type:text[]" bson:"unlikes" json:"unlikes"`
	Views     int64          `gorm:"default:0" bson:"views" json:"views"`
}

// VideoWithCreator is a video joined with the public identity of its creator.
type VideoWithCreator struct {
	*Video
	Creator *PublicUser `json:"creator"`
}
