package notifier

import (
	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For recorded matches. names maps player ids to display names.
	SendResultNotification(match *scoring.Match, names map[string]string, dryRun bool) error
	// For the leaderboard
	SendLeaderboard(standings []stats.Standing, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(standings []stats.Standing) (any, error)
}
