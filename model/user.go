package model

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/lib/pq"
)

/*

User is a registered account, either a creator who uploads videos or a
consumer who only watches and engages.

Id: primary key, uuid string
CreatedAt: time when entity is created
UpdatedAt: time when entity is last saved

FirstName, LastName, DateOfBirth: profile fields collected at registration
Username: unique handle, used in public routes (/subscribe/:username)
Email: unique, stored lower-cased
Password: bcrypt hash, never serialized
Role: "creator" or "consumer"
Subscribers: ids of users subscribed to this user. Stored as a single array
	column/field and rewritten as a whole on every subscribe.
ProfilePic: media reference of the profile picture, optional

*/

type User struct {
	Id          string         `gorm:"primaryKey" bson:"_id" json:"_id"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
	FirstName   string         `bson:"firstName" json:"firstName"`
	LastName    string         `bson:"lastName" json:"lastName"`
	DateOfBirth time.Time      `bson:"dateOfBirth" json:"dateOfBirth"`
	Username    string         `gorm:"uniqueIndex;not null" bson:"username" json:"username"`
	Email       string         `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password    string         `gorm:"not null" bson:"password" json:"-"`
	Role        Role           `gorm:"default:consumer" bson:"role" json:"role"`
	Subscribers pq.StringArray `gorm:"type:text[]" bson:"subscribers" json:"subscribers"`
	ProfilePic  string         `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}

type Role string

const (
	RoleCreator  Role = "creator"
	RoleConsumer Role = "consumer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCreator, RoleConsumer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// PublicUser is the identity of a user that is safe to hand to any client.
type PublicUser struct {
	Id       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public projects u to its PublicUser. A nil user projects to nil.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	var p PublicUser
	copier.Copy(&p, u)
	return &p
}

// PublicUsersById indexes the public projection of users by user id.
func PublicUsersById(users []*User) map[string]*PublicUser {
	res := make(map[string]*PublicUser, len(users))
	for _, u := range users {
		res[u.Id] = u.Public()
	}
	return res
}
