package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventSessionEnded    EventType = "session-ended"
	EventSnapshotCreated EventType = "snapshot-created"
)

// SnapshotCreated is the payload of EventSnapshotCreated.
type SnapshotCreated struct {
	SnapshotID   string `msgpack:"snapshot_id"`
	SessionID    string `msgpack:"session_id"`
	SessionDate  string `msgpack:"session_date"`
	Season       string `msgpack:"season"`
	CheckIns     int    `msgpack:"check_ins"`
	Matches      int    `msgpack:"matches"`
	MatchPlayers int    `msgpack:"match_players"`
}
