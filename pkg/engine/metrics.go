package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes run diagnostics as Prometheus collectors. Pass a nil
// registerer to collect without exposing (promauto skips registration).
type Metrics struct {
	PhotonWeight    *prometheus.CounterVec
	Iterations      prometheus.Counter
	Substeps        prometheus.Counter
	ConvergenceStat prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PhotonWeight: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcrt_photon_weight_total",
			Help: "Summed statistical weight of photons by terminal type.",
		}, []string{"type"}),
		Iterations: factory.NewCounter(prometheus.CounterOpts{
			Name: "mcrt_iterations_total",
			Help: "Number of completed transport iterations.",
		}),
		Substeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "mcrt_substeps_total",
			Help: "Number of completed photon-shooting substeps.",
		}),
		ConvergenceStat: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mcrt_convergence_statistic",
			Help: "Chi-squared-like statistic of the last iteration.",
		}),
	}
}
