package http

import (
	"net/http"

	"github.com/Popalay/tennis-tracker/internal/config"
	"github.com/Popalay/tennis-tracker/internal/metrics"
	"github.com/Popalay/tennis-tracker/internal/notifier"
	"github.com/Popalay/tennis-tracker/internal/pubsub"
	"github.com/Popalay/tennis-tracker/internal/tracker"
)

func NewServer(store tracker.TrackerStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.PlayersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.MatchesHandler(), paramsMiddleware))
	s.Router.Handle("/match", Chain(s.MatchHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/stats/player", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/stats/progress", Chain(s.PlayerProgressHandler(), paramsMiddleware))
	s.Router.Handle("/stats/combined", Chain(s.CombinedProgressHandler(), paramsMiddleware))
	s.Router.Handle("/stats/distribution", Chain(s.WinLossDistributionHandler(), paramsMiddleware))
	s.Router.Handle("/recompute-stats", Chain(s.RecomputeStatsHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/recompute", Chain(s.RecomputeStatsPushHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
