// Package stats derives player and leaderboard aggregates from scored
// matches. It is the single home of aggregation math: stores and handlers
// call into it rather than re-implementing point splits.
package stats

import (
	"sort"
	"strings"

	"github.com/Popalay/tennis-tracker/internal/scoring"
)

// Summarize folds every match the player took part in into a PlayerSummary.
// Doubles matches credit half the team's games and points to each member.
func Summarize(matches []*scoring.Match, playerID string) PlayerSummary {
	var summary PlayerSummary

	for _, m := range matches {
		if m == nil || !m.HasPlayer(playerID) {
			continue
		}
		side, ok := m.SideID(playerID)
		if !ok {
			continue
		}

		share := 1.0
		if m.Format == scoring.FormatDoubles {
			share = 0.5
		}

		summary.TotalMatches++
		summary.TotalSets += len(m.Sets)

		for _, set := range m.Sets {
			for key, games := range set.Games {
				summary.TotalGames += games
				if key == side {
					summary.GamesWon += float64(games) * share
				}
			}
			if set.Winner == side {
				summary.SetsWon++
			}
		}

		if m.PointsEarned != nil {
			summary.TotalPoints += float64(m.PointsEarned.Points[side]) * share
			if m.PointsEarned.Winner == side {
				summary.MatchesWon++
			}
		}
	}

	return summary
}

// Progression returns the player's per-match points in chronological order
// along with a running total.
func Progression(matches []*scoring.Match, playerID string) []ProgressPoint {
	ordered := byDate(matches)
	points := make([]ProgressPoint, 0, len(ordered))

	var running float64
	for _, m := range ordered {
		if !m.HasPlayer(playerID) {
			continue
		}
		side, ok := m.SideID(playerID)
		if !ok || m.PointsEarned == nil {
			continue
		}

		earned := float64(m.PointsEarned.Points[side])
		if m.Format == scoring.FormatDoubles {
			earned /= 2
		}
		running += earned
		points = append(points, ProgressPoint{
			Date:       m.CreatedAt,
			Points:     earned,
			Cumulative: running,
		})
	}

	return points
}

// CombinedProgress builds one running-total series per entrant across all
// matches of the given format. Entrants that never scored are left out.
// Each row carries every entrant's total as of that date, so lines stay
// flat between the matches they appear in.
func CombinedProgress(matches []*scoring.Match, players []NamedPlayer, format scoring.Format) CombinedSeries {
	ordered := make([]*scoring.Match, 0, len(matches))
	for _, m := range byDate(matches) {
		if m.Format == format {
			ordered = append(ordered, m)
		}
	}

	// First pass: discover entrants in appearance order and their final totals.
	var order []string
	finals := make(map[string]float64)
	labels := make(map[string]string)
	for _, m := range ordered {
		if m.PointsEarned == nil {
			continue
		}
		for _, id := range entrantIDs(m) {
			if _, seen := finals[id]; !seen {
				order = append(order, id)
				labels[id] = entrantLabel(m, id, players)
			}
			finals[id] += float64(m.PointsEarned.Points[id])
		}
	}

	series := CombinedSeries{}
	for _, id := range order {
		if finals[id] > 0 {
			series.Lines = append(series.Lines, SeriesLine{ID: id, Label: labels[id]})
		}
	}

	// Second pass: one row per match, carrying forward the running totals.
	running := make(map[string]float64)
	for _, m := range ordered {
		if m.PointsEarned == nil {
			continue
		}
		for _, id := range entrantIDs(m) {
			running[id] += float64(m.PointsEarned.Points[id])
		}

		totals := make(map[string]float64, len(series.Lines))
		for _, line := range series.Lines {
			totals[line.ID] = running[line.ID]
		}
		series.Rows = append(series.Rows, ProgressRow{Date: m.CreatedAt, Totals: totals})
	}

	return series
}

// WinLossDistribution counts the player's decided matches. A match the
// player did not win, including one with no winner, counts as lost.
func WinLossDistribution(matches []*scoring.Match, playerID string) WinLoss {
	var dist WinLoss
	for _, m := range matches {
		if m == nil || !m.HasPlayer(playerID) || m.PointsEarned == nil {
			continue
		}
		side, _ := m.SideID(playerID)
		if m.PointsEarned.Winner == side && side != "" {
			dist.Won++
		} else {
			dist.Lost++
		}
	}
	return dist
}

// Rank orders standings by total points descending. The sort is stable, so
// entries tied on points keep their incoming order.
func Rank(entries []Standing) []Standing {
	ranked := make([]Standing, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPoints > ranked[j].TotalPoints
	})
	return ranked
}

func byDate(matches []*scoring.Match) []*scoring.Match {
	ordered := make([]*scoring.Match, 0, len(matches))
	for _, m := range matches {
		if m != nil {
			ordered = append(ordered, m)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}

func entrantIDs(m *scoring.Match) []string {
	if m.Format == scoring.FormatDoubles {
		ids := make([]string, 0, len(m.Teams))
		for _, team := range m.Teams {
			ids = append(ids, scoring.TeamID(team))
		}
		return ids
	}
	return m.Players
}

func entrantLabel(m *scoring.Match, id string, players []NamedPlayer) string {
	if m.Format == scoring.FormatDoubles {
		for _, team := range m.Teams {
			if scoring.TeamID(team) != id {
				continue
			}
			names := make([]string, 0, len(team))
			for _, member := range team {
				names = append(names, displayName(member, players))
			}
			return strings.Join(names, " & ")
		}
	}
	return displayName(id, players)
}

func displayName(id string, players []NamedPlayer) string {
	for _, p := range players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
