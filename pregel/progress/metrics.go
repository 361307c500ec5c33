package progress

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mycok/uPregel/pregel"
)

// MetricsObserver exports superstep statistics as prometheus metrics. All
// metrics are labelled with the name of the computation.
type MetricsObserver struct {
	supersteps     *prometheus.CounterVec
	messagesSent   *prometheus.CounterVec
	activeVertices *prometheus.GaugeVec
	stepDuration   *prometheus.HistogramVec
}

// NewMetricsObserver creates the observer metrics and registers them with
// reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		supersteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pregel",
			Name:      "supersteps_total",
			Help:      "The number of completed supersteps.",
		}, []string{"computation"}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pregel",
			Name:      "messages_sent_total",
			Help:      "The number of messages sent by vertex programs.",
		}, []string{"computation"}),
		activeVertices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pregel",
			Name:      "active_vertices",
			Help:      "The number of vertices processed in the most recent superstep.",
		}, []string{"computation"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pregel",
			Name:      "superstep_duration_seconds",
			Help:      "The time it took to complete a superstep.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"computation"}),
	}

	for _, c := range []prometheus.Collector{
		o.supersteps, o.messagesSent, o.activeVertices, o.stepDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// StepStarted implements pregel.Observer.
func (o *MetricsObserver) StepStarted(stats pregel.StepStats) {
	o.activeVertices.WithLabelValues(stats.Computation).Set(float64(stats.ActiveVertices))
}

// StepCompleted implements pregel.Observer.
func (o *MetricsObserver) StepCompleted(stats pregel.StepStats) {
	o.supersteps.WithLabelValues(stats.Computation).Inc()
	o.messagesSent.WithLabelValues(stats.Computation).Add(float64(stats.MessagesSent))
	o.activeVertices.WithLabelValues(stats.Computation).Set(float64(stats.ActiveVertices))
	o.stepDuration.WithLabelValues(stats.Computation).Observe(stats.Duration.Seconds())
}
