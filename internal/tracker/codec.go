package tracker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/Popalay/tennis-tracker/internal/scoring"
)

// Matches are stored with their JSON columns in canonical form: teams as an
// array of member arrays, set winners as plain strings. Earlier exports used
// looser shapes (index-keyed team maps, winner wrapped in an array), so the
// decoder accepts those too and normalizes on read.

func encodeSets(sets map[int]scoring.Set) ([]byte, error) {
	keyed := make(map[string]scoring.Set, len(sets))
	for number, set := range sets {
		keyed[strconv.Itoa(number)] = set
	}
	return json.Marshal(keyed)
}

type rawSet struct {
	Games  map[string]int  `json:"games"`
	Winner json.RawMessage `json:"winner"`
}

func decodeSets(data []byte) (map[int]scoring.Set, error) {
	var keyed map[string]rawSet
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, fmt.Errorf("failed to decode sets: %w", err)
	}

	sets := make(map[int]scoring.Set, len(keyed))
	for key, raw := range keyed {
		number, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid set number %q: %w", key, err)
		}
		winner, err := decodeWinner(raw.Winner)
		if err != nil {
			return nil, fmt.Errorf("invalid winner in set %s: %w", key, err)
		}
		sets[number] = scoring.Set{Games: raw.Games, Winner: winner}
	}
	return sets, nil
}

// decodeWinner accepts the canonical string form as well as the legacy array
// form. The legacy array holds the winning side's full member list, so a
// multi-element array normalizes to the joined team id.
func decodeWinner(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var winner string
	if err := json.Unmarshal(raw, &winner); err == nil {
		return winner, nil
	}
	var winners []string
	if err := json.Unmarshal(raw, &winners); err != nil {
		return "", err
	}
	switch len(winners) {
	case 0:
		return "", nil
	case 1:
		return winners[0], nil
	default:
		return scoring.TeamID(winners), nil
	}
}

type rawPoints struct {
	Points    map[string]int  `json:"points"`
	Winner    json.RawMessage `json:"winner"`
	TotalSets int             `json:"totalSets"`
}

// decodePoints accepts the canonical PointsEarned form as well as the legacy
// winner-as-array form.
func decodePoints(data []byte) (*scoring.PointsEarned, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raw rawPoints
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode points: %w", err)
	}
	winner, err := decodeWinner(raw.Winner)
	if err != nil {
		return nil, fmt.Errorf("invalid match winner: %w", err)
	}
	return &scoring.PointsEarned{Points: raw.Points, Winner: winner, TotalSets: raw.TotalSets}, nil
}

// decodeTeams accepts the canonical array-of-arrays form as well as the
// legacy map forms keyed by index ("0", "1") or label ("team1", "team2").
func decodeTeams(data []byte) ([][]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var teams [][]string
	if err := json.Unmarshal(data, &teams); err == nil {
		return teams, nil
	}

	var keyed map[string][]string
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}

	keys := make([]string, 0, len(keyed))
	for key := range keyed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	teams = make([][]string, 0, len(keys))
	for _, key := range keys {
		teams = append(teams, keyed[key])
	}
	return teams, nil
}
