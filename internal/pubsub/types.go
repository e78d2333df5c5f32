package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchRecorded  EventType = "match-recorded"
	EventRecomputeStats EventType = "recompute-stats"
)

// MatchRecordedEvent is published after a match has been scored and stored.
type MatchRecordedEvent struct {
	MatchID string   `msgpack:"matchId"`
	Format  string   `msgpack:"format"`
	Players []string `msgpack:"players"`
	Winner  string   `msgpack:"winner"`
}

// RecomputeStatsEvent asks a worker to re-derive all player stats.
type RecomputeStatsEvent struct {
	Reason string `msgpack:"reason"`
}
