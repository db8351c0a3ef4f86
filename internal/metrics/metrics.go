package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	// OutcomeRejected labels requests refused for bad input or an unserviceable standard.
	OutcomeRejected = "rejected"
	// OutcomeError labels failures of the pipeline or its stores.
	OutcomeError = "error"
)

// Calculation kinds.
const (
	KindFIT       = "fit"
	KindComponent = "component"
	KindProject   = "project"
)

var (
	calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_fmeda",
			Name:      "calculations_total",
			Help:      "Total number of calculations handled, partitioned by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	calculationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mirador_fmeda",
			Name:      "calculation_seconds",
			Help:      "Calculation latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	degradationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_fmeda",
			Name:      "degradations_total",
			Help:      "Failure rates produced through a fallback, partitioned by standard and reason.",
		},
		[]string{"standard", "reason"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_fmeda",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups, partitioned by hit or miss.",
		},
		[]string{"result"},
	)
)

// Register attaches mirador-fmeda collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		calculationsTotal,
		calculationDurationSeconds,
		degradationsTotal,
		cacheLookupsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveCalculation records a calculation duration and outcome label.
func ObserveCalculation(kind string, duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeRejected, OutcomeError:
	default:
		outcome = OutcomeError
	}
	calculationsTotal.WithLabelValues(kind, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	calculationDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveDegradation counts one fallback-produced rate.
func ObserveDegradation(standard, reason string) {
	degradationsTotal.WithLabelValues(standard, reason).Inc()
}

// ObserveCacheLookup counts a result cache hit or miss.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}
