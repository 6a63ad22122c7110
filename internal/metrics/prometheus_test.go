package metrics_test

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/metrics"
)

func TestMetrics_ObserveForecast(t *testing.T) {
	m := metrics.New()

	m.ObserveForecast("naive", 5*time.Millisecond, 1.5, 2.5, 3.5, nil)
	m.ObserveForecast("naive", 0, 0, 0, 0, errors.New("boom"))

	count, err := testutil.GatherAndCount(m.Registry(), "energy_forecaster_forecasts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `energy_forecaster_forecast_error{metric="rmse",model="naive"} 2.5`)
	assert.Contains(t, body, `energy_forecaster_forecasts_total{model="naive",result="error"} 1`)
}

func TestMetrics_ObserveIngest(t *testing.T) {
	m := metrics.New()

	m.ObserveIngest(720, nil)
	m.ObserveIngest(0, errors.New("empty"))
	m.SetWebSocketClients(3)
	m.SetCircuitBreakerState("source", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `energy_forecaster_datasets_ingested_total{result="success"} 1`)
	assert.Contains(t, body, `energy_forecaster_datasets_ingested_total{result="error"} 1`)
	assert.Contains(t, body, `energy_forecaster_ingest_rows_count 1`)
	assert.Contains(t, body, `energy_forecaster_websocket_clients 3`)
	assert.Contains(t, body, `energy_forecaster_circuit_breaker_state{name="source"} 1`)
}

func TestMetrics_RegisterDBStats(t *testing.T) {
	m := metrics.New()

	stats := sql.DBStats{MaxOpenConnections: 10, OpenConnections: 4, InUse: 3, Idle: 1, WaitCount: 7}
	m.RegisterDBStats(func() sql.DBStats { return stats })
	m.RegisterDBStats(func() sql.DBStats { return sql.DBStats{} })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "energy_forecaster_db_open_connections 4")
	assert.Contains(t, body, "energy_forecaster_db_in_use_connections 3")
	assert.Contains(t, body, "energy_forecaster_db_idle_connections 1")
	assert.Contains(t, body, "energy_forecaster_db_max_open_connections 10")
	assert.Contains(t, body, "energy_forecaster_db_wait_count_total 7")

	stats.InUse = 0
	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "energy_forecaster_db_in_use_connections 0")
}
