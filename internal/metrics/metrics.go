// Package metrics exposes Prometheus metrics and a health endpoint for
// the screener.
package metrics

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for a screening run.
type Metrics struct {
	SymbolsScanned prometheus.Counter
	SymbolsSkipped *prometheus.CounterVec // labels: reason=insufficient_history|no_data|illiquid
	FetchFailures  prometheus.Counter
	SignalsTotal   *prometheus.CounterVec // labels: type
	FetchDur       prometheus.Histogram
	RunDur         prometheus.Gauge
	LastRunMatches prometheus.Gauge
	EventsAppended prometheus.Counter
	CacheHits      prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		SymbolsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_symbols_scanned_total",
			Help: "Symbols whose series passed the history requirement and were evaluated",
		}),
		SymbolsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_symbols_skipped_total",
			Help: "Symbols excluded from the run (by reason)",
		}, []string{"reason"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_fetch_failures_total",
			Help: "Provider fetch failures after retries",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_signals_total",
			Help: "Signal events detected (by type)",
		}, []string{"type"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_fetch_duration_seconds",
			Help:    "Provider history fetch latency per symbol",
			Buckets: prometheus.DefBuckets,
		}),
		RunDur: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_run_duration_seconds",
			Help: "Wall time of the last screening run",
		}),
		LastRunMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_last_run_matches",
			Help: "Qualifying symbols in the last run's report",
		}),
		EventsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_events_appended_total",
			Help: "New signal events appended to the event log",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_bar_cache_hits_total",
			Help: "Bar series served from the Redis cache",
		}),
	}

	prometheus.MustRegister(
		m.SymbolsScanned,
		m.SymbolsSkipped,
		m.FetchFailures,
		m.SignalsTotal,
		m.FetchDur,
		m.RunDur,
		m.LastRunMatches,
		m.EventsAppended,
		m.CacheHits,
	)

	return m
}

// Server runs an HTTP server exposing /metrics.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
