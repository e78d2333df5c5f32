package tracker

import (
	"database/sql"
	"sync"
	"time"

	"github.com/Popalay/tennis-tracker/internal/scoring"
)

// store handles all database operations for the tracker.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a player in the store together with the running
// stat counters maintained as matches are recorded.
type PlayerInfo struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TotalPoints   float64   `json:"totalPoints"`
	MatchesPlayed int       `json:"matchesPlayed"`
	MatchesWon    int       `json:"matchesWon"`
	SetsWon       int       `json:"setsWon"`
	GamesWon      float64   `json:"gamesWon"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MatchFilter narrows GetAllMatches. Zero fields are ignored.
type MatchFilter struct {
	PlayerID string
	Format   scoring.Format
	From     time.Time
	To       time.Time
}
