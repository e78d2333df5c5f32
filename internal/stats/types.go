package stats

import "time"

// PlayerSummary is the aggregate view of one player's recorded matches.
// Doubles matches credit each team member half of the team's games and
// points, so the fractional fields are float64.
type PlayerSummary struct {
	TotalMatches int     `json:"totalMatches"`
	MatchesWon   int     `json:"matchesWon"`
	TotalSets    int     `json:"totalSets"`
	SetsWon      int     `json:"setsWon"`
	TotalGames   int     `json:"totalGames"`
	GamesWon     float64 `json:"gamesWon"`
	TotalPoints  float64 `json:"totalPoints"`
}

// ProgressPoint is one match's contribution to a player's running total.
type ProgressPoint struct {
	Date       time.Time `json:"date"`
	Points     float64   `json:"points"`
	Cumulative float64   `json:"cumulativePoints"`
}

// NamedPlayer pairs a player id with its display name for labelling.
type NamedPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SeriesLine identifies one entrant (player or team) in a combined chart.
type SeriesLine struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ProgressRow holds every entrant's running total as of one date.
type ProgressRow struct {
	Date   time.Time          `json:"date"`
	Totals map[string]float64 `json:"totals"`
}

// CombinedSeries is the full multi-entrant progression dataset.
type CombinedSeries struct {
	Lines []SeriesLine  `json:"lines"`
	Rows  []ProgressRow `json:"rows"`
}

// WinLoss counts decided outcomes; matches without a winner count as lost.
type WinLoss struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

// Standing is one leaderboard row.
type Standing struct {
	PlayerID    string  `json:"playerId"`
	Name        string  `json:"name"`
	TotalPoints float64 `json:"totalPoints"`
}
