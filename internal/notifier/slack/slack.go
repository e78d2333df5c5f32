package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Popalay/tennis-tracker/internal/metrics"
	"github.com/Popalay/tennis-tracker/internal/notifier"
	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/stats"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(match *scoring.Match, names map[string]string, dryRun bool) error {
	msg := s.formatResultNotification(match, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(standings []stats.Standing, dryRun bool) error {
	msg := s.formatLeaderboard(standings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(standings []stats.Standing) (any, error) {
	return s.formatLeaderboard(standings), nil
}

// formatResultNotification creates the Slack message for a recorded match using Block Kit.
func (s *Notifier) formatResultNotification(match *scoring.Match, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match recorded! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	displayName := func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}
	sideName := func(sideID string) string {
		if match.Format == scoring.FormatDoubles {
			for _, team := range match.Teams {
				if scoring.TeamID(team) != sideID {
					continue
				}
				memberNames := make([]string, 0, len(team))
				for _, member := range team {
					memberNames = append(memberNames, displayName(member))
				}
				return strings.Join(memberNames, " & ")
			}
		}
		return displayName(sideID)
	}

	// Set scores
	var resultsFields []*slack.TextBlockObject
	for _, number := range sortedSetNumbers(match.Sets) {
		set := match.Sets[number]
		var scoresText []string
		for sideID, games := range set.Games {
			scoresText = append(scoresText, fmt.Sprintf("• %s: %d", sideName(sideID), games))
		}
		sort.Strings(scoresText) // Sort to ensure deterministic order
		setText := fmt.Sprintf("Set %d\n%s", number, strings.Join(scoresText, "\n"))
		resultsFields = append(resultsFields, slack.NewTextBlockObject("plain_text", setText, true, false))
	}

	resultHeaderText := "Result:"
	if match.PointsEarned != nil && match.PointsEarned.Winner != "" {
		resultHeaderText = fmt.Sprintf("Result: %s won! 🏆", sideName(match.PointsEarned.Winner))
	}

	if len(resultsFields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultHeaderText, true, false), resultsFields, nil))
	} else {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Result: No sets reported.", true, false), nil, nil))
	}

	// Points context
	if match.PointsEarned != nil {
		var pointsText []string
		for sideID, points := range match.PointsEarned.Points {
			pointsText = append(pointsText, fmt.Sprintf("%s: %d pts", sideName(sideID), points))
		}
		sort.Strings(pointsText)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", strings.Join(pointsText, " | "), true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(standings []stats.Standing) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, standing := range standings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		name := standing.Name
		if name == "" {
			name = standing.PlayerID
		}
		playerText := fmt.Sprintf("%d. %s %s\n> Total Points: %.1f", rank, medal, name, standing.TotalPoints)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func sortedSetNumbers(sets map[int]scoring.Set) []int {
	numbers := make([]int, 0, len(sets))
	for number := range sets {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	return numbers
}
