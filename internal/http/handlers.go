package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Popalay/tennis-tracker/internal/pubsub"
	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/Popalay/tennis-tracker/internal/stats"
	"github.com/Popalay/tennis-tracker/internal/tracker"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			if err := s.Store.DeleteMatch(matchID); err != nil {
				http.Error(w, "Match not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			log.Info("Successfully cleared match from store", "matchID", matchID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

// PlayersHandler lists players on GET and registers a new player on POST.
func (s *Server) PlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var input struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if input.Name == "" {
				http.Error(w, "Player name is required", http.StatusBadRequest)
				return
			}
			player, err := s.Store.CreatePlayer(input.Name)
			if err != nil {
				http.Error(w, "Failed to create player", http.StatusInternalServerError)
				log.Error("Failed to create player", "error", err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			if err := json.NewEncoder(w).Encode(player); err != nil {
				log.Error("Failed to write response", "error", err)
			}
		default:
			players, err := s.Store.GetAllPlayers()
			if err != nil {
				http.Error(w, "Failed to get players", http.StatusInternalServerError)
				log.Error("Failed to get players from store", "error", err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(players); err != nil {
				log.Error("Failed to write response", "error", err)
			}
		}
	}
}

// MatchesHandler lists matches on GET and records a new match on POST.
func (s *Server) MatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			s.recordMatch(w, r)
		default:
			filter, err := matchFilterFromQuery(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			matches, err := s.Store.GetAllMatches(filter)
			if err != nil {
				http.Error(w, "Failed to get matches", http.StatusInternalServerError)
				log.Error("Failed to get matches from store", "error", err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(matches); err != nil {
				log.Error("Failed to encode matches to JSON", "error", err)
			}
		}
	}
}

func matchFilterFromQuery(r *http.Request) (tracker.MatchFilter, error) {
	filter := tracker.MatchFilter{
		PlayerID: r.URL.Query().Get("player"),
		Format:   scoring.Format(r.URL.Query().Get("format")),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return tracker.MatchFilter{}, fmt.Errorf("invalid 'from' date %q, expected YYYY-MM-DD", from)
		}
		filter.From = parsed
	}
	if to := r.URL.Query().Get("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return tracker.MatchFilter{}, fmt.Errorf("invalid 'to' date %q, expected YYYY-MM-DD", to)
		}
		filter.To = parsed
	}
	return filter, nil
}

// recordMatch validates, scores and stores a submitted match, then fans out
// the notification and the pubsub event.
func (s *Server) recordMatch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID      string              `json:"id"`
		Format  scoring.Format      `json:"format"`
		Players []string            `json:"players"`
		Teams   [][]string          `json:"teams"`
		Sets    map[int]scoring.Set `json:"sets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	match := &scoring.Match{
		ID:        input.ID,
		Format:    input.Format,
		Players:   input.Players,
		Teams:     input.Teams,
		Sets:      input.Sets,
		CreatedAt: time.Now(),
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}

	if fieldErrors := scoring.ValidateInput(match); !fieldErrors.OK() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := json.NewEncoder(w).Encode(map[string]any{"errors": fieldErrors}); err != nil {
			log.Error("Failed to write validation response", "error", err)
		}
		return
	}

	start := time.Now()
	points, err := scoring.CalculateMatchPoints(match)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidMatch) {
			http.Error(w, "Invalid match shape", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to score match", http.StatusInternalServerError)
		log.Error("Failed to score match", "error", err)
		return
	}
	match.PointsEarned = &points

	if err := s.Store.RecordMatch(match); err != nil {
		http.Error(w, "Failed to save match", http.StatusInternalServerError)
		log.Error("Failed to save match", "error", err, "matchID", match.ID)
		return
	}
	s.Metrics.IncMatchesRecorded()
	s.Metrics.ObserveScoringDuration(time.Since(start).Seconds())

	isDryRun := isDryRunFromContext(r)
	if err := s.Notifier.SendResultNotification(match, s.playerNames(), isDryRun); err != nil {
		log.Error("Failed to send result notification", "error", err, "matchID", match.ID)
	}

	event := pubsub.MatchRecordedEvent{
		MatchID: match.ID,
		Format:  string(match.Format),
		Players: match.Players,
		Winner:  points.Winner,
	}
	if err := s.pubsub.SendMessage(pubsub.EventMatchRecorded, event); err != nil {
		log.Error("Failed to publish match recorded event", "error", err, "matchID", match.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(match); err != nil {
		log.Error("Failed to encode match to JSON", "error", err)
	}
}

// MatchHandler fetches a single match on GET and removes it on DELETE.
func (s *Server) MatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("id")
		if matchID == "" {
			http.Error(w, "Match id is required", http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodDelete:
			if err := s.Store.DeleteMatch(matchID); err != nil {
				http.Error(w, "Match not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Deleted match %s", matchID)
		default:
			match, err := s.Store.GetMatch(matchID)
			if err != nil {
				http.Error(w, "Match not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(match); err != nil {
				log.Error("Failed to encode match to JSON", "error", err)
			}
		}
	}
}

// standings builds the leaderboard entries from the stored player counters.
func (s *Server) standings() ([]stats.Standing, error) {
	players, err := s.Store.GetAllPlayers()
	if err != nil {
		return nil, err
	}
	entries := make([]stats.Standing, 0, len(players))
	for _, player := range players {
		entries = append(entries, stats.Standing{
			PlayerID:    player.ID,
			Name:        player.Name,
			TotalPoints: player.TotalPoints,
		})
	}
	return stats.Rank(entries), nil
}

// playerNames maps player ids to display names for notifications.
func (s *Server) playerNames() map[string]string {
	players, err := s.Store.GetAllPlayers()
	if err != nil {
		log.Error("Failed to get players for name lookup", "error", err)
		return nil
	}
	names := make(map[string]string, len(players))
	for _, player := range players {
		names[player.ID] = player.Name
	}
	return names
}

// LeaderboardHandler returns a handler that serves the ranked leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.standings()
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(standings); err != nil {
			log.Error("Failed to encode standings to JSON", "error", err)
		}
	}
}

// PlayerStatsHandler serves a single player's aggregate summary, derived
// from the stored matches rather than the incremental counters.
func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			http.Error(w, "Player id is required", http.StatusBadRequest)
			return
		}

		matches, err := s.Store.GetAllMatches(tracker.MatchFilter{PlayerID: playerID})
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}

		summary := stats.Summarize(matches, playerID)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			log.Error("Failed to encode summary to JSON", "error", err)
		}
	}
}

// PlayerProgressHandler serves a player's cumulative point progression.
func (s *Server) PlayerProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			http.Error(w, "Player id is required", http.StatusBadRequest)
			return
		}

		matches, err := s.Store.GetAllMatches(tracker.MatchFilter{PlayerID: playerID})
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}

		progression := stats.Progression(matches, playerID)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(progression); err != nil {
			log.Error("Failed to encode progression to JSON", "error", err)
		}
	}
}

// CombinedProgressHandler serves the multi-entrant progression chart data
// for one match format.
func (s *Server) CombinedProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := scoring.Format(r.URL.Query().Get("format"))
		if format == "" {
			format = scoring.FormatSingles
		}

		matches, err := s.Store.GetAllMatches(tracker.MatchFilter{Format: format})
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}

		named := make([]stats.NamedPlayer, 0, len(players))
		for _, player := range players {
			named = append(named, stats.NamedPlayer{ID: player.ID, Name: player.Name})
		}

		series := stats.CombinedProgress(matches, named, format)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(series); err != nil {
			log.Error("Failed to encode series to JSON", "error", err)
		}
	}
}

// WinLossDistributionHandler serves a player's win/loss counts.
func (s *Server) WinLossDistributionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			http.Error(w, "Player id is required", http.StatusBadRequest)
			return
		}

		matches, err := s.Store.GetAllMatches(tracker.MatchFilter{PlayerID: playerID})
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}

		distribution := stats.WinLossDistribution(matches, playerID)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(distribution); err != nil {
			log.Error("Failed to encode distribution to JSON", "error", err)
		}
	}
}

// RecomputeStatsHandler re-derives every player's counters from the stored matches.
func (s *Server) RecomputeStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting player stats recompute...")
		if err := s.Store.RecomputePlayerStats(); err != nil {
			http.Error(w, "Failed to recompute stats", http.StatusInternalServerError)
			log.Error("Failed to recompute stats", "error", err)
			return
		}
		s.Metrics.IncStatsRecomputes()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Stats recompute completed.")
		log.Info("Stats recompute finished.")
	}
}

// RecomputeStatsPushHandler handles a pubsub push delivery asking for a recompute.
func (s *Server) RecomputeStatsPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received recompute stats message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		event := pubsub.RecomputeStatsEvent{}
		s.pubsub.ProcessMessage(rawData, &event)
		log.Info("Processing recompute stats event", "reason", event.Reason)

		if err := s.Store.RecomputePlayerStats(); err != nil {
			log.Error("Failed to recompute stats", "error", err)
			http.Error(w, "Failed to recompute stats", http.StatusInternalServerError)
			return
		}
		s.Metrics.IncStatsRecomputes()
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.standings()
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(standings)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}
