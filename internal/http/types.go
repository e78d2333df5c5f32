package http

import (
	"net/http"

	"github.com/Popalay/tennis-tracker/internal/config"
	"github.com/Popalay/tennis-tracker/internal/metrics"
	"github.com/Popalay/tennis-tracker/internal/notifier"
	"github.com/Popalay/tennis-tracker/internal/pubsub"
	"github.com/Popalay/tennis-tracker/internal/tracker"
)

type Server struct {
	Store          tracker.TrackerStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
