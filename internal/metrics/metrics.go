package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gamehub"

// Metrics holds the service collectors on a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	arcadeSessions prometheus.Gauge
	arcadeScores   prometheus.Histogram
	matches        *prometheus.CounterVec
}

func New() *Metrics {
	that := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		arcadeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arcade_sessions_active",
			Help:      "Open arcade connections.",
		}),
		arcadeScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "arcade_final_score",
			Help:      "Final score of finished arcade sessions.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xandzero_matches_finished_total",
			Help:      "Finished xandzero matches by mode and winner.",
		}, []string{"mode", "winner"}),
	}

	that.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		that.requests,
		that.duration,
		that.arcadeSessions,
		that.arcadeScores,
		that.matches,
	)

	return that
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{})
}

// Instrument counts and times requests under the route pattern, not the raw path.
func (that *Metrics) Instrument(route string, next httprouter.Handle) httprouter.Handle {
	if that == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(recorder, r, params)

		that.requests.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		that.duration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	}
}

func (that *Metrics) SessionOpened() {
	if that == nil {
		return
	}
	that.arcadeSessions.Inc()
}

func (that *Metrics) SessionClosed() {
	if that == nil {
		return
	}
	that.arcadeSessions.Dec()
}

func (that *Metrics) ArcadeFinished(score int64) {
	if that == nil {
		return
	}
	that.arcadeScores.Observe(float64(score))
}

func (that *Metrics) MatchFinished(mode, winner string) {
	if that == nil {
		return
	}
	that.matches.WithLabelValues(mode, winner).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (that *statusRecorder) WriteHeader(status int) {
	that.status = status
	that.ResponseWriter.WriteHeader(status)
}
