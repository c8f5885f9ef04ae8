// Package metrics exposes Prometheus metrics for the API and its table
// surfaces on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// ConnCounter reports live websocket connections at scrape time.
type ConnCounter interface {
	ClientCount() int
}

// Opts holds the configuration options for the metrics API.
type Opts struct {
	AuthMiddleware func(http.Handler) http.Handler
	Hub            ConnCounter
}

// Metrics owns the registry and every collector. It implements
// pager.Observer so table controllers report into it directly.
type Metrics struct {
	opts     Opts
	Router   chi.Router
	registry *prometheus.Registry

	pagesLoaded  *prometheus.CounterVec
	rowsLoaded   *prometheus.CounterVec
	pageFailures *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	tableSession prometheus.Gauge
	wsClients    prometheus.Gauge
}

func New(opts Opts) *Metrics {
	m := &Metrics{
		opts:     opts,
		Router:   chi.NewRouter(),
		registry: prometheus.NewRegistry(),
		pagesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_table_pages_loaded_total",
			Help: "Pages appended to table controllers.",
		}, []string{"table"}),
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_table_rows_loaded_total",
			Help: "Rows appended to table controllers.",
		}, []string{"table"}),
		pageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_table_page_failures_total",
			Help: "Page fetches that failed and were swallowed.",
		}, []string{"table"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_table_page_fetch_seconds",
			Help:    "Latency of successful page fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		tableSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backoffice_table_sessions",
			Help: "Open dashboard table sessions.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backoffice_order_hub_clients",
			Help: "Websocket clients connected to the order hub.",
		}),
	}
	m.registry.MustRegister(m.pagesLoaded, m.rowsLoaded, m.pageFailures, m.fetchSeconds,
		m.httpRequests, m.tableSession, m.wsClients)

	handler := http.HandlerFunc(m.handleMetrics)
	if opts.AuthMiddleware != nil {
		handler = opts.AuthMiddleware(handler).ServeHTTP
	}
	m.Router.Get("/", handler)
	return m
}

// Registry exposes the registry for callers that add their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PageLoaded(table string, page, rows int, took time.Duration) {
	m.pagesLoaded.WithLabelValues(table).Inc()
	m.rowsLoaded.WithLabelValues(table).Add(float64(rows))
	m.fetchSeconds.WithLabelValues(table).Observe(took.Seconds())
}

func (m *Metrics) PageFailed(table string, page int, err error) {
	m.pageFailures.WithLabelValues(table).Inc()
}

// SessionOpened and SessionClosed track live dashboard table sessions.
func (m *Metrics) SessionOpened() { m.tableSession.Inc() }
func (m *Metrics) SessionClosed() { m.tableSession.Dec() }

// Middleware counts requests by method and final status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}

// handleMetrics serves Prometheus-formatted metrics.
func (m *Metrics) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if m.opts.Hub != nil {
		m.wsClients.Set(float64(m.opts.Hub.ClientCount()))
	}

	metricFamilies, err := m.registry.Gather()
	if err != nil {
		http.Error(w, "Failed to gather metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", string(expfmt.FmtText))
	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			http.Error(w, "Failed to encode metrics", http.StatusInternalServerError)
			return
		}
	}
}
