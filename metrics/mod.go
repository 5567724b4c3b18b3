// Package metrics instruments proof verification with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// KindShuffle labels shuffle proof checks.
	KindShuffle = "shuffle"
	// KindDecryption labels decryption proof checks.
	KindDecryption = "decryption"

	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	// Labels to use for partitioning proof checks.
	checkLabels = []string{"kind", "outcome"}

	// Labels to use for partitioning check latencies.
	latencyLabels = []string{"kind"}
)

// VerificationMetrics counts and times proof checks. A nil
// *VerificationMetrics is valid and records nothing.
type VerificationMetrics struct {
	// Counts of checked proofs, partitioned by kind and outcome.
	Checks *prometheus.CounterVec

	// Time spent checking a single proof.
	Latencies *prometheus.HistogramVec
}

// NewVerificationMetrics creates the instrumentation and registers it with
// reg.
func NewVerificationMetrics(reg prometheus.Registerer) (*VerificationMetrics, error) {
	m := &VerificationMetrics{
		Checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mixnet_proof_checks_total",
				Help: "How many proofs were checked, partitioned by proof kind and outcome.",
			},
			checkLabels,
		),
		Latencies: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mixnet_proof_check_seconds",
				Help:    "How long a single proof check takes, partitioned by proof kind.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			latencyLabels,
		),
	}

	for _, c := range []prometheus.Collector{m.Checks, m.Latencies} {
		err := reg.Register(c)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Observe records the outcome of one check of the given kind that started
// at start.
func (m *VerificationMetrics) Observe(kind string, start time.Time, valid bool, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeValid
	switch {
	case err != nil:
		outcome = OutcomeError
	case !valid:
		outcome = OutcomeInvalid
	}

	m.Checks.WithLabelValues(kind, outcome).Inc()
	m.Latencies.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
