package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/energy-forecaster/internal/logger"
)

const namespace = "energy_forecaster"

type Metrics struct {
	registry *prometheus.Registry

	datasetsIngested    *prometheus.CounterVec
	ingestRows          prometheus.Histogram
	forecastsTotal      *prometheus.CounterVec
	forecastDuration    *prometheus.HistogramVec
	forecastError       *prometheus.GaugeVec
	eventsTotal         *prometheus.CounterVec
	websocketClients    prometheus.Gauge
	circuitBreakerState *prometheus.GaugeVec

	dbStatsOnce sync.Once
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors.
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New builds collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		datasetsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_ingested_total",
			Help:      "Uploaded datasets by outcome.",
		}, []string{"result"}),
		ingestRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_rows",
			Help:      "Valid points per ingested dataset.",
			Buckets:   prometheus.ExponentialBuckets(24, 2, 12),
		}),
		forecastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Forecast runs by model and outcome.",
		}, []string{"model", "result"}),
		forecastDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time spent producing one forecast.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"model"}),
		forecastError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_error",
			Help:      "Error metrics of the most recent forecast per model.",
		}, []string{"model", "metric"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Internal events by type.",
		}, []string{"type"}),
		websocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),
		circuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "0=closed, 1=open, 2=half-open.",
		}, []string{"name"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.datasetsIngested,
		m.ingestRows,
		m.forecastsTotal,
		m.forecastDuration,
		m.forecastError,
		m.eventsTotal,
		m.websocketClients,
		m.circuitBreakerState,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveIngest(rows int, err error) {
	if err != nil {
		m.datasetsIngested.WithLabelValues("error").Inc()
		return
	}
	m.datasetsIngested.WithLabelValues("success").Inc()
	m.ingestRows.Observe(float64(rows))
}

func (m *Metrics) ObserveForecast(model string, d time.Duration, mae, rmse, mape float64, err error) {
	if err != nil {
		m.forecastsTotal.WithLabelValues(model, "error").Inc()
		return
	}
	m.forecastsTotal.WithLabelValues(model, "success").Inc()
	m.forecastDuration.WithLabelValues(model).Observe(d.Seconds())
	m.forecastError.WithLabelValues(model, "mae").Set(mae)
	m.forecastError.WithLabelValues(model, "rmse").Set(rmse)
	m.forecastError.WithLabelValues(model, "mape").Set(mape)
}

func (m *Metrics) IncEvent(eventType string) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) SetWebSocketClients(n int) {
	m.websocketClients.Set(float64(n))
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RegisterDBStats exports the connection pool counters read from stats at
// scrape time. Only the first call registers.
func (m *Metrics) RegisterDBStats(stats func() sql.DBStats) {
	m.dbStatsOnce.Do(func() {
		gauge := func(name, help string, value func(sql.DBStats) float64) prometheus.Collector {
			return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      name,
				Help:      help,
			}, func() float64 { return value(stats()) })
		}

		m.registry.MustRegister(
			gauge("open_connections", "Established connections, in use and idle.",
				func(s sql.DBStats) float64 { return float64(s.OpenConnections) }),
			gauge("in_use_connections", "Connections currently in use.",
				func(s sql.DBStats) float64 { return float64(s.InUse) }),
			gauge("idle_connections", "Idle connections.",
				func(s sql.DBStats) float64 { return float64(s.Idle) }),
			gauge("max_open_connections", "Configured connection limit.",
				func(s sql.DBStats) float64 { return float64(s.MaxOpenConnections) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "wait_count_total",
				Help:      "Connections waited for.",
			}, func() float64 { return float64(stats().WaitCount) }),
		)
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StartServer serves /metrics on its own port and returns the server so the
// caller can shut it down.
func StartServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Infof("Prometheus metrics server listening on %s", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()

	return srv
}
