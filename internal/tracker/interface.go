package tracker

import "github.com/Popalay/tennis-tracker/internal/scoring"

// TrackerStore defines the interface for interacting with the tracker's data.
type TrackerStore interface {
	CreatePlayer(name string) (PlayerInfo, error)
	UpsertPlayer(player PlayerInfo) error
	GetPlayer(playerID string) (*PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	RecordMatch(match *scoring.Match) error
	GetMatch(matchID string) (*scoring.Match, error)
	GetAllMatches(filter MatchFilter) ([]*scoring.Match, error)
	DeleteMatch(matchID string) error
	RecomputePlayerStats() error
	Clear()
}
