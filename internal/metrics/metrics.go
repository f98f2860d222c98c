package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "testseries_session_saves_total",
		Help: "Test-session mapping writes accepted by the API.",
	})
	DescriptiveGrades = promauto.NewCounter(prometheus.CounterOpts{
		Name: "testseries_descriptive_grades_total",
		Help: "Descriptive question grades recorded.",
	})
	KeepAlivePings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "testseries_keepalive_pings_total",
		Help: "Database keep-alive pings sent.",
	})
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "testseries_active_sessions",
		Help: "Browser sessions currently tracked as active.",
	})
)

func Handler() http.Handler { return promhttp.Handler() }
