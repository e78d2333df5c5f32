package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Popalay/tennis-tracker/internal/config"
	"github.com/Popalay/tennis-tracker/internal/database"
	"github.com/Popalay/tennis-tracker/internal/metrics"
	"github.com/Popalay/tennis-tracker/internal/notifier"
	"github.com/Popalay/tennis-tracker/internal/pubsub"
	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/stats"
	"github.com/Popalay/tennis-tracker/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, mockNotifier notifier.Notifier) (*Server, *pubsub.MockPubSubClient) {
	t.Helper()

	// For handlers that use the store, we need a real db connection for now.
	db, dbTeardown, err := database.InitDB(t.TempDir()+"/test.db", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	store := tracker.New(db)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	pubsubMock := pubsub.NewMock("TEST")
	server := NewServer(store, metricsSvc, metricsHandler, cfg, mockNotifier, pubsubMock)

	return server, pubsubMock
}

func recordMatchBody(t *testing.T, format string, players []string, sets string) *bytes.Reader {
	t.Helper()
	body := fmt.Sprintf(`{"format":%q,"players":["%s"],"sets":%s}`, format, strings.Join(players, `","`), sets)
	return bytes.NewReader([]byte(body))
}

func TestHealthCheckHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	// Use the server's router to serve the request, which is more robust.
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestPlayersHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("POST", "/players", strings.NewReader(`{"name":"Ann"}`))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var created tracker.PlayerInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ann", created.Name)

	req, err = http.NewRequest("GET", "/players", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ann")
}

func TestPlayersHandler_MissingName(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("POST", "/players", strings.NewReader(`{}`))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordMatchHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, pubsubMock := setupTestServer(t, mockNotifier)

	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":6,"B":4},"winner":"A"},"2":{"games":{"A":6,"B":3},"winner":"A"}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var recorded scoring.Match
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recorded))
	assert.NotEmpty(t, recorded.ID)
	require.NotNil(t, recorded.PointsEarned)
	assert.Equal(t, "A", recorded.PointsEarned.Winner)
	assert.Equal(t, 32, recorded.PointsEarned.Points["A"])
	assert.Equal(t, 7, recorded.PointsEarned.Points["B"])

	// Stored and stats applied.
	stored, err := server.Store.GetMatch(recorded.ID)
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, stored.ID)

	winner, err := server.Store.GetPlayer("A")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.MatchesWon)
	assert.InDelta(t, 32.0, winner.TotalPoints, 1e-9)

	// Notification and event fan-out.
	require.Len(t, mockNotifier.SendResultNotificationCalls, 1)
	require.Len(t, pubsubMock.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventMatchRecorded), pubsubMock.SendMessageCalls[0].Topic)
	event, ok := pubsubMock.SendMessageCalls[0].Data.(pubsub.MatchRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, recorded.ID, event.MatchID)
	assert.Equal(t, "A", event.Winner)
}

func TestRecordMatchHandler_ValidationErrors(t *testing.T) {
	server, pubsubMock := setupTestServer(t, notifier.NewMock())

	// Tied games in set 1 and a missing winner in set 2.
	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":5,"B":5},"winner":"A"},"2":{"games":{"A":6,"B":3}}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var response struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Contains(t, response.Errors, "set_1")
	assert.Contains(t, response.Errors, "set_2_winner")

	// Nothing stored, nothing published.
	matches, err := server.Store.GetAllMatches(tracker.MatchFilter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, pubsubMock.SendMessageCalls)
}

func TestRecordMatchHandler_InvalidJSON(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("POST", "/matches", strings.NewReader("not json"))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMatchHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":6,"B":2},"winner":"A"}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var recorded scoring.Match
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recorded))

	req, err = http.NewRequest("GET", "/match?id="+recorded.ID, nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), recorded.ID)

	req, err = http.NewRequest("DELETE", "/match?id="+recorded.ID, nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req, err = http.NewRequest("GET", "/match?id="+recorded.ID, nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req, err = http.NewRequest("GET", "/match", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	require.NoError(t, server.Store.UpsertPlayer(tracker.PlayerInfo{ID: "A", Name: "Ann"}))
	require.NoError(t, server.Store.UpsertPlayer(tracker.PlayerInfo{ID: "B", Name: "Bob"}))

	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":6,"B":2},"winner":"A"}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req, err = http.NewRequest("GET", "/leaderboard", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var standings []stats.Standing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standings))
	require.Len(t, standings, 2)
	assert.Equal(t, "A", standings[0].PlayerID)
	assert.InDelta(t, 21.0, standings[0].TotalPoints, 1e-9)
	assert.Equal(t, "B", standings[1].PlayerID)
}

func TestPlayerStatsHandlers(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":6,"B":2},"winner":"A"}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("summary", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/stats/player?id=A", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var summary stats.PlayerSummary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, 1, summary.TotalMatches)
		assert.Equal(t, 1, summary.MatchesWon)
		assert.InDelta(t, 21.0, summary.TotalPoints, 1e-9)
	})

	t.Run("progression", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/stats/progress?id=A", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var points []stats.ProgressPoint
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &points))
		require.Len(t, points, 1)
		assert.InDelta(t, 21.0, points[0].Cumulative, 1e-9)
	})

	t.Run("distribution", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/stats/distribution?id=B", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var dist stats.WinLoss
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dist))
		assert.Equal(t, stats.WinLoss{Won: 0, Lost: 1}, dist)
	})

	t.Run("combined", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/stats/combined?format=1v1", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var series stats.CombinedSeries
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &series))
		require.Len(t, series.Lines, 2)
		require.Len(t, series.Rows, 1)
	})

	t.Run("missing id", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/stats/player", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRecomputeStatsHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":6,"B":2},"winner":"A"}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var recorded scoring.Match
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recorded))
	require.NoError(t, server.Store.DeleteMatch(recorded.ID))

	req, err = http.NewRequest("POST", "/recompute-stats", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	player, err := server.Store.GetPlayer("A")
	require.NoError(t, err)
	assert.Equal(t, 0, player.MatchesPlayed)
	assert.InDelta(t, 0.0, player.TotalPoints, 1e-9)
}

func TestRecomputeStatsPushHandler(t *testing.T) {
	server, pubsubMock := setupTestServer(t, notifier.NewMock())
	pubsubMock.ProcessMessageFunc = func(data []byte, returnValue any) error {
		return msgpack.Unmarshal(data, returnValue)
	}

	payload, err := msgpack.Marshal(pubsub.RecomputeStatsEvent{Reason: "manual"})
	require.NoError(t, err)
	wrapper := fmt.Sprintf(`{"subscription":"sub","message":{"data":%q}}`, base64.StdEncoding.EncodeToString(payload))

	req, err := http.NewRequest("POST", "/pubsub/recompute", strings.NewReader(wrapper))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	require.Len(t, pubsubMock.ProcessMessageCalls, 1)
}

func TestRecomputeStatsPushHandler_BadPayload(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("POST", "/pubsub/recompute", strings.NewReader("not json"))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req, err = http.NewRequest("POST", "/pubsub/recompute", strings.NewReader(`{"message":{"data":"!!!"}}`))
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(standings []stats.Standing) (any, error) {
		return slack.NewBlockMessage(), nil
	}
	server, _ := setupTestServer(t, mockNotifier)

	req, err := http.NewRequest("POST", "/slack/command/leaderboard", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClearStoreHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	body := recordMatchBody(t, "1v1", []string{"A", "B"},
		`{"1":{"games":{"A":6,"B":2},"winner":"A"}}`)
	req, err := http.NewRequest("POST", "/matches", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req, err = http.NewRequest("GET", "/clear", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	players, err := server.Store.GetAllPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)
}
