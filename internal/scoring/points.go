package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidMatch is returned when a match is structurally unusable for
// scoring: nil or missing sets, an unknown format, or a participant list
// that does not fit the format. Callers can match it with errors.Is.
var ErrInvalidMatch = errors.New("invalid match shape")

// CalculateMatchPoints computes the points awarded by a finished match.
// Every side earns one point per game won and five per set won; the side
// with strictly more set wins earns a ten point match bonus. Doubles points
// accumulate against the team id only — splitting them between team members
// is the aggregation layer's job.
//
// The function is pure: it never mutates the match and is deterministic for
// a given input. A set with no declared winner contributes its game counts
// but no set bonus. A match with zero sets yields zeroed points and no
// winner.
func CalculateMatchPoints(m *Match) (PointsEarned, error) {
	if m == nil {
		return PointsEarned{}, fmt.Errorf("%w: nil match", ErrInvalidMatch)
	}
	if m.Sets == nil {
		return PointsEarned{}, fmt.Errorf("%w: missing sets", ErrInvalidMatch)
	}

	sideA, sideB, err := sides(m)
	if err != nil {
		return PointsEarned{}, err
	}

	result := PointsEarned{
		Points:    map[string]int{sideA: 0, sideB: 0},
		TotalSets: len(m.Sets),
	}

	var setWinsA, setWinsB int
	for _, set := range m.Sets {
		result.Points[sideA] += set.Games[sideA] * GameWin
		result.Points[sideB] += set.Games[sideB] * GameWin

		switch set.Winner {
		case sideA:
			result.Points[sideA] += SetWin
			setWinsA++
		case sideB:
			result.Points[sideB] += SetWin
			setWinsB++
		}
	}

	// Equal set wins cannot happen in a completed best-of-odd match, but a
	// tied or malformed record must not hand the bonus to either side.
	switch {
	case setWinsA > setWinsB:
		result.Winner = sideA
		result.Points[sideA] += MatchWin
	case setWinsB > setWinsA:
		result.Winner = sideB
		result.Points[sideB] += MatchWin
	}

	return result, nil
}

// sides resolves the two scoring keys for a match: the player ids for
// singles, the derived team ids for doubles.
func sides(m *Match) (string, string, error) {
	switch m.Format {
	case FormatSingles:
		if len(m.Players) != 2 {
			return "", "", fmt.Errorf("%w: singles match needs exactly 2 players, got %d", ErrInvalidMatch, len(m.Players))
		}
		return m.Players[0], m.Players[1], nil
	case FormatDoubles:
		if len(m.Teams) != 2 || len(m.Teams[0]) != 2 || len(m.Teams[1]) != 2 {
			return "", "", fmt.Errorf("%w: doubles match needs two teams of two", ErrInvalidMatch)
		}
		return TeamID(m.Teams[0]), TeamID(m.Teams[1]), nil
	default:
		return "", "", fmt.Errorf("%w: unknown format %q", ErrInvalidMatch, m.Format)
	}
}
