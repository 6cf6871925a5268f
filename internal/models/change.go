package models

import "time"

// Topic names a live feed.
type Topic string

const (
	TopicMatches  Topic = "matches"
	TopicBookings Topic = "bookings"
	TopicScans    Topic = "scans"
)

type ChangeAction string

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
	ChangeDeleted ChangeAction = "deleted"
)

// ChangeEvent announces a write to one of the collections. Subscribers
// re-read the collection rather than patching from the event.
type ChangeEvent struct {
	Topic      Topic        `json:"topic"`
	Action     ChangeAction `json:"action"`
	DocumentID string       `json:"documentId"`
	OccurredAt time.Time    `json:"occurredAt"`
	Origin     string       `json:"origin,omitempty"`
}
