package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "debater_runs_total",
	Help: "Counter-argument runs by outcome (ok, failed, rejected).",
}, []string{"status"})

func countRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}
