package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	songsSubmitted  *prometheus.CounterVec
	cartChanges     *prometheus.CounterVec
	checkouts       prometheus.Counter
	songsPurchased  prometheus.Counter
	storageFailures *prometheus.CounterVec

	mu     sync.Mutex
	genres map[string]bool
}

// maxGenreLabels caps the distinct genre label values; later genres are counted as "other".
const maxGenreLabels = 50

// NewMetrics creates the collectors and registers them, with the Go and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		genres:   make(map[string]bool),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "songcart",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songcart",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "songcart",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method", "path"}),
		songsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songcart",
			Subsystem: "catalog",
			Name:      "songs_submitted_total",
			Help:      "Songs submitted to the catalog, by genre.",
		}, []string{"genre"}),
		cartChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songcart",
			Subsystem: "cart",
			Name:      "songs_total",
			Help:      "Songs added to, skipped by or removed from carts.",
		}, []string{"result"}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "songcart",
			Subsystem: "cart",
			Name:      "checkouts_total",
			Help:      "Completed checkouts.",
		}),
		songsPurchased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "songcart",
			Subsystem: "history",
			Name:      "songs_total",
			Help:      "Songs moved into purchase histories.",
		}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songcart",
			Subsystem: "store",
			Name:      "unavailable_total",
			Help:      "Requests that failed because storage was unavailable.",
		}, []string{"path"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.songsSubmitted,
		m.cartChanges,
		m.checkouts,
		m.songsPurchased,
		m.storageFailures,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts, durations and in-flight requests.
func (m *Metrics) Instrument() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			m.httpInFlight.Inc()
			defer m.httpInFlight.Dec()

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			method := strings.ToUpper(r.Method)
			path := canonicalPath(r.URL.Path)

			m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) songSubmitted(genre string) {
	m.songsSubmitted.WithLabelValues(m.genreLabel(genre)).Inc()
}

func (m *Metrics) genreLabel(genre string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.genres[genre] {
		if len(m.genres) >= maxGenreLabels {
			return "other"
		}
		m.genres[genre] = true
	}
	return genre
}

func (m *Metrics) cartChanged(result string, n int) {
	if n > 0 {
		m.cartChanges.WithLabelValues(result).Add(float64(n))
	}
}

func (m *Metrics) checkedOut(moved int) {
	m.checkouts.Inc()
	m.songsPurchased.Add(float64(moved))
}

func (m *Metrics) storageFailed(path string) {
	m.storageFailures.WithLabelValues(canonicalPath(path)).Inc()
}

// knownPaths bounds the path label to the routes songcart serves.
var knownPaths = map[string]bool{
	"/": true, "/sign": true, "/display": true, "/search": true,
	"/addSong2Cart": true, "/removeSongFromCart": true, "/checkout": true,
	"/view_cart": true, "/preview_checkout": true, "/view_history": true,
	"/healthz": true,
}

func canonicalPath(raw string) string {
	if knownPaths[raw] {
		return raw
	}
	return "other"
}
