package tracker

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/stats"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new TrackerStore.
func New(db *sql.DB) TrackerStore {
	return &store{
		db: db,
	}
}

// CreatePlayer registers a new player with a generated id and zeroed stats.
func (s *store) CreatePlayer(name string) (PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := PlayerInfo{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	_, err := s.db.Exec(
		"INSERT INTO players (id, name, created_at) VALUES (?, ?, ?)",
		player.ID, player.Name, player.CreatedAt.Unix(),
	)
	if err != nil {
		return PlayerInfo{}, fmt.Errorf("failed to create player: %w", err)
	}
	log.Info("Created player", "playerID", player.ID, "name", name)
	return player, nil
}

// UpsertPlayer inserts a player or updates its name. Stat counters are left
// alone, they belong to RecordMatch and RecomputePlayerStats.
func (s *store) UpsertPlayer(player PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := player.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO players (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`, player.ID, player.Name, createdAt.Unix())
	return err
}

func (s *store) GetPlayer(playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, total_points, matches_played, matches_won, sets_won, games_won, created_at
		FROM players WHERE id = ?
	`, playerID)

	player, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player %s not found", playerID)
		}
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	return player, nil
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, total_points, matches_played, matches_won, sets_won, games_won, created_at
		FROM players ORDER BY rowid
	`)
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*PlayerInfo, error) {
	var player PlayerInfo
	var name sql.NullString
	var createdAt int64

	err := scanner.Scan(
		&player.ID, &name, &player.TotalPoints, &player.MatchesPlayed,
		&player.MatchesWon, &player.SetsWon, &player.GamesWon, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	player.Name = name.String
	player.CreatedAt = time.Unix(createdAt, 0)
	return &player, nil
}

// RecordMatch stores a scored match and applies its stat increments to every
// participant inside a single transaction. Doubles credit each team member
// half of the team's games and points. The applied increments stay in place
// even if the match is later deleted; RecomputePlayerStats is the way back
// to a consistent state.
func (s *store) RecordMatch(match *scoring.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.PointsEarned == nil {
		points, err := scoring.CalculateMatchPoints(match)
		if err != nil {
			return err
		}
		match.PointsEarned = &points
	}

	playersJSON, err := json.Marshal(match.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}
	teamsJSON, err := json.Marshal(match.Teams)
	if err != nil {
		return fmt.Errorf("failed to encode teams: %w", err)
	}
	setsJSON, err := encodeSets(match.Sets)
	if err != nil {
		return fmt.Errorf("failed to encode sets: %w", err)
	}
	pointsJSON, err := json.Marshal(match.PointsEarned)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO matches (id, format, players_json, teams_json, sets_json, points_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, match.ID, string(match.Format), playersJSON, teamsJSON, setsJSON, pointsJSON, match.CreatedAt.Unix())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert match: %w", err)
	}

	for _, playerID := range match.Players {
		summary := stats.Summarize([]*scoring.Match{match}, playerID)
		_, err = tx.Exec(`
			INSERT INTO players (id, name, total_points, matches_played, matches_won, sets_won, games_won, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				total_points = total_points + excluded.total_points,
				matches_played = matches_played + excluded.matches_played,
				matches_won = matches_won + excluded.matches_won,
				sets_won = sets_won + excluded.sets_won,
				games_won = games_won + excluded.games_won;
		`, playerID, playerID, summary.TotalPoints, summary.TotalMatches, summary.MatchesWon, summary.SetsWon, summary.GamesWon, match.CreatedAt.Unix())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update stats for player %s: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Recorded match", "matchID", match.ID, "format", match.Format, "winner", match.PointsEarned.Winner)
	return nil
}

func (s *store) GetMatch(matchID string) (*scoring.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, format, players_json, teams_json, sets_json, points_json, created_at
		FROM matches WHERE id = ?
	`, matchID)

	match, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match %s not found", matchID)
		}
		return nil, fmt.Errorf("failed to query match: %w", err)
	}
	return match, nil
}

// GetAllMatches retrieves matches in chronological order, narrowed by filter.
func (s *store) GetAllMatches(filter MatchFilter) ([]*scoring.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(filter)
}

func (s *store) queryMatches(filter MatchFilter) ([]*scoring.Match, error) {
	query := `
		SELECT id, format, players_json, teams_json, sets_json, points_json, created_at
		FROM matches
	`
	var conditions []string
	var args []any
	if filter.Format != "" {
		conditions = append(conditions, "format = ?")
		args = append(args, string(filter.Format))
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.From.Unix())
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.To.Unix())
	}
	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []*scoring.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		if filter.PlayerID != "" && !match.HasPlayer(filter.PlayerID) {
			continue
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func scanMatch(scanner interface{ Scan(...any) error }) (*scoring.Match, error) {
	var match scoring.Match
	var format string
	var playersJSON, setsJSON string
	var teamsJSON, pointsJSON sql.NullString
	var createdAt int64

	err := scanner.Scan(&match.ID, &format, &playersJSON, &teamsJSON, &setsJSON, &pointsJSON, &createdAt)
	if err != nil {
		return nil, err
	}
	match.Format = scoring.Format(format)
	match.CreatedAt = time.Unix(createdAt, 0)

	if err := json.Unmarshal([]byte(playersJSON), &match.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players for match %s: %w", match.ID, err)
	}
	if teamsJSON.Valid && teamsJSON.String != "" {
		teams, err := decodeTeams([]byte(teamsJSON.String))
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", match.ID, err)
		}
		match.Teams = teams
	}
	sets, err := decodeSets([]byte(setsJSON))
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", match.ID, err)
	}
	match.Sets = sets

	if pointsJSON.Valid && pointsJSON.String != "" {
		points, err := decodePoints([]byte(pointsJSON.String))
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", match.ID, err)
		}
		match.PointsEarned = points
	}

	return &match, nil
}

// DeleteMatch removes the match row. Stat increments already applied are
// deliberately not reversed.
func (s *store) DeleteMatch(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("match %s not found", matchID)
	}
	log.Info("Deleted match", "matchID", matchID)
	return nil
}

// RecomputePlayerStats re-derives every player's counters from the stored
// matches, replacing whatever the incremental updates had accumulated.
func (s *store) RecomputePlayerStats() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.queryMatches(MatchFilter{})
	if err != nil {
		return err
	}

	rows, err := s.db.Query("SELECT id FROM players")
	if err != nil {
		return err
	}
	defer rows.Close()

	var playerIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		playerIDs = append(playerIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	for _, playerID := range playerIDs {
		summary := stats.Summarize(matches, playerID)
		_, err = tx.Exec(`
			UPDATE players
			SET total_points = ?, matches_played = ?, matches_won = ?, sets_won = ?, games_won = ?
			WHERE id = ?
		`, summary.TotalPoints, summary.TotalMatches, summary.MatchesWon, summary.SetsWon, summary.GamesWon, playerID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to recompute stats for player %s: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Recomputed player stats", "players", len(playerIDs), "matches", len(matches))
	return nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	if _, err := tx.Exec("DELETE FROM matches"); err != nil {
		log.Error("Failed to clear matches table", "error", err)
		tx.Rollback()
		return
	}
	if _, err := tx.Exec("DELETE FROM players"); err != nil {
		log.Error("Failed to clear players table", "error", err)
		tx.Rollback()
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}
