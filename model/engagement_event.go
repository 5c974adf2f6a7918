package model

// EngagementKind names a viewer action on a video or a creator.
type EngagementKind string

const (
	EngagementLike      EngagementKind = "like"
	EngagementUnlike    EngagementKind = "unlike"
	EngagementSubscribe EngagementKind = "subscribe"
	EngagementComment   EngagementKind = "comment"
	EngagementView      EngagementKind = "view"
)

// EngagementEvent is published on the event bus after an engagement has been
// persisted. Changed is false for idempotent repeats (liking twice).
type EngagementEvent struct {
	Kind      EngagementKind `json:"kind"`
	VideoId   string         `json:"videoId,omitempty"`
	CreatorId string         `json:"creatorId,omitempty"`
	ActorId   string         `json:"actorId,omitempty"`
	Changed   bool           `json:"changed"`
}

// TopicEngagementEvent carries every EngagementEvent, JSON encoded.
const TopicEngagementEvent = "engagement.event"
