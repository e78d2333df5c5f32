package notifier

import (
	"sync"

	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/stats"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendResultNotificationFunc    func(match *scoring.Match, names map[string]string, dryRun bool) error
	SendLeaderboardFunc           func(standings []stats.Standing, dryRun bool) error
	FormatLeaderboardResponseFunc func(standings []stats.Standing) (any, error)

	// Call records
	SendResultNotificationCalls []struct{ Match *scoring.Match }
	SendLeaderboardCalls        [][]stats.Standing
	LastLeaderboardResponse     any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendResultNotification(match *scoring.Match, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct{ Match *scoring.Match }{match})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, names, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(standings []stats.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, standings)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(standings, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(standings []stats.Standing) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(standings)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}
