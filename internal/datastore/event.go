package datastore

import "time"

// TopicChanged is the topic change events are published on.
const TopicChanged = "datastore.changed"

// ChangeEvent announces a committed write to other processes sharing the backend.
type ChangeEvent struct {
	Key       string    `json:"key"`
	Origin    string    `json:"origin"`
	ChangedAt time.Time `json:"changedAt"`
}
