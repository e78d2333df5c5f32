package scoring

import (
	"strings"
	"time"
)

// Format identifies the match format.
type Format string

const (
	// FormatSingles is a one-on-one match between two players.
	FormatSingles Format = "1v1"
	// FormatDoubles is a two-on-two match between two teams.
	FormatDoubles Format = "2v2"
)

// Point values awarded by the scoring engine.
const (
	GameWin  = 1
	SetWin   = 5
	MatchWin = 10
)

// Set holds the per-side game counts for one set. Games is keyed by player id
// for singles and by team id for doubles. An empty Winner means the set was
// left undecided; validation rejects that at input time but the engine
// tolerates it.
type Set struct {
	Games  map[string]int `json:"games"`
	Winner string         `json:"winner,omitempty"`
}

// PointsEarned is the scoring engine's output for a finished match.
// Points is keyed the same way as Set.Games. An empty Winner means no side
// won strictly more sets.
type PointsEarned struct {
	Points    map[string]int `json:"points"`
	Winner    string         `json:"winner,omitempty"`
	TotalSets int            `json:"totalSets"`
}

// Match is the canonical in-memory match record. Players holds two entrant
// ids for singles and all four (team one first) for doubles. Teams is only
// set for doubles. Sets is keyed by 1-based set number, dense after any
// renumbering done by the input layer.
type Match struct {
	ID           string        `json:"id"`
	Format       Format        `json:"format"`
	Players      []string      `json:"players"`
	Teams        [][]string    `json:"teams,omitempty"`
	Sets         map[int]Set   `json:"sets"`
	CreatedAt    time.Time     `json:"createdAt"`
	PointsEarned *PointsEarned `json:"pointsEarned,omitempty"`
}

// TeamID derives the aggregation key for a doubles team by joining the member
// ids in stored order. The same members in the same order always map to the
// same key; the key is intentionally order-sensitive.
func TeamID(members []string) string {
	return strings.Join(members, "-")
}

// Team returns the stored team containing the given player, or false for
// singles matches and unknown players.
func (m *Match) Team(playerID string) ([]string, bool) {
	for _, team := range m.Teams {
		for _, id := range team {
			if id == playerID {
				return team, true
			}
		}
	}
	return nil, false
}

// HasPlayer reports whether the entrant took part in this match.
func (m *Match) HasPlayer(playerID string) bool {
	for _, id := range m.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// SideID resolves the scoring key for a participant: the player id itself in
// singles, the player's team id in doubles. ok is false when the player is
// not part of the match.
func (m *Match) SideID(playerID string) (string, bool) {
	if !m.HasPlayer(playerID) {
		return "", false
	}
	if m.Format == FormatDoubles {
		team, ok := m.Team(playerID)
		if !ok {
			return "", false
		}
		return TeamID(team), true
	}
	return playerID, true
}
