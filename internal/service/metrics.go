package service

import "github.com/prometheus/client_golang/prometheus"

var (
	gamesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rpsls_games_created_total",
		Help: "Games opened with an escrowed commitment.",
	})

	gamesSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpsls_games_settled_total",
		Help: "Games settled, by settlement path and outcome.",
	}, []string{"path", "outcome"})

	commitmentMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rpsls_commitment_mismatch_total",
		Help: "Reveals that failed to open the stored commitment.",
	})

	transitionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpsls_transition_errors_total",
		Help: "Rejected game operations, by operation and error kind.",
	}, []string{"op", "kind"})
)

func init() {
	prometheus.MustRegister(gamesCreated, gamesSettled, commitmentMismatches, transitionErrors)
}
