package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the game counters exposed on /metrics
type Metrics struct {
	registry *prometheus.Registry

	SessionsCreated      prometheus.Counter
	PlayersJoined        prometheus.Counter
	GameActions          *prometheus.CounterVec
	StaleSessionsDeleted prometheus.Counter
	VersionConflicts     prometheus.Counter
}

// New registers the counters on a fresh registry together with the Go runtime collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "jugayaprende_sessions_created_total",
			Help: "Game sessions created.",
		}),
		PlayersJoined: factory.NewCounter(prometheus.CounterOpts{
			Name: "jugayaprende_players_joined_total",
			Help: "Players added to a session (repeat joins are not counted).",
		}),
		GameActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jugayaprende_game_actions_total",
			Help: "Player and host actions by game type, action and result.",
		}, []string{"type", "action", "result"}),
		StaleSessionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "jugayaprende_stale_sessions_deleted_total",
			Help: "Sessions removed by the stale sweep.",
		}),
		VersionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "jugayaprende_session_version_conflicts_total",
			Help: "Session saves retried because another writer got there first.",
		}),
	}
}

// ObserveAction counts one action outcome
func (m *Metrics) ObserveAction(gameType, action, result string) {
	if action == "" {
		action = "none"
	}
	m.GameActions.WithLabelValues(gameType, action, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
