package tracker

import (
	"sync"

	"github.com/Popalay/tennis-tracker/internal/scoring"
)

// MockStore is a mock implementation of the TrackerStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreatePlayerFunc         func(name string) (PlayerInfo, error)
	UpsertPlayerFunc         func(player PlayerInfo) error
	GetPlayerFunc            func(playerID string) (*PlayerInfo, error)
	GetAllPlayersFunc        func() ([]PlayerInfo, error)
	RecordMatchFunc          func(match *scoring.Match) error
	GetMatchFunc             func(matchID string) (*scoring.Match, error)
	GetAllMatchesFunc        func(filter MatchFilter) ([]*scoring.Match, error)
	DeleteMatchFunc          func(matchID string) error
	RecomputePlayerStatsFunc func() error
	ClearFunc                func()

	// Call records
	CreatePlayerCalls         []string
	UpsertPlayerCalls         []PlayerInfo
	RecordMatchCalls          []*scoring.Match
	GetAllMatchesCalls        []MatchFilter
	DeleteMatchCalls          []string
	RecomputePlayerStatsCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatePlayerCalls = nil
	m.UpsertPlayerCalls = nil
	m.RecordMatchCalls = nil
	m.GetAllMatchesCalls = nil
	m.DeleteMatchCalls = nil
	m.RecomputePlayerStatsCalls = 0
}

func (m *MockStore) CreatePlayer(name string) (PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatePlayerCalls = append(m.CreatePlayerCalls, name)
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(name)
	}
	return PlayerInfo{ID: name, Name: name}, nil
}

func (m *MockStore) UpsertPlayer(player PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, player)
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(player)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) RecordMatch(match *scoring.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordMatchCalls = append(m.RecordMatchCalls, match)
	if m.RecordMatchFunc != nil {
		return m.RecordMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*scoring.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) GetAllMatches(filter MatchFilter) ([]*scoring.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetAllMatchesCalls = append(m.GetAllMatchesCalls, filter)
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc(filter)
	}
	return nil, nil
}

func (m *MockStore) DeleteMatch(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, matchID)
	if m.DeleteMatchFunc != nil {
		return m.DeleteMatchFunc(matchID)
	}
	return nil
}

func (m *MockStore) RecomputePlayerStats() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecomputePlayerStatsCalls++
	if m.RecomputePlayerStatsFunc != nil {
		return m.RecomputePlayerStatsFunc()
	}
	return nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
