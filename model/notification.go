package model

import (
	"time"

	"gorm.io/datatypes"
)

/*

Notification is a message delivered to a single recipient as a side effect of
someone else's engagement. There is no read state: listing always returns the
full history.

Id: primary key, uuid string
CreatedAt: server assigned, notifications are listed by it descending
UserID: recipient
Kind: which engagement produced it
Message: human readable text, the only place the acting user is mentioned
Target: JSON reference to what the notification is about, e.g.
	{"videoId": "..."} or {"username": "..."}

*/

type Notification struct {
	Id        string           `gorm:"primaryKey" bson:"_id" json:"_id"`
	CreatedAt time.Time        `gorm:"index" bson:"createdAt" json:"createdAt"`
	UserID    string           `gorm:"index;not null" bson:"user" json:"user"`
	Kind      NotificationKind `bson:"kind" json:"kind"`
	Message   string           `gorm:"not null" bson:"message" json:"message"`
	Target    datatypes.JSON   `bson:"target,omitempty" json:"target,omitempty"`
}

type NotificationKind string

const (
	NotificationKindLike      NotificationKind = "like"
	NotificationKindComment   NotificationKind = "comment"
	NotificationKindSubscribe NotificationKind = "subscribe"
)

func (k NotificationKind) String() string {
	return string(k)
}
