package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtask/relay/internal/metrics"
)

type fixedCounter int

func (c fixedCounter) Len() int { return int(c) }

func TestNewServer_RequiresCounter(t *testing.T) {
	_, err := NewServer(":0", nil, nil)
	assert.Error(t, err)
}

func TestHandleLiveness(t *testing.T) {
	clock := clockwork.NewFakeClock()
	srv, err := NewServer(":0", fixedCounter(3), clock)
	require.NoError(t, err)
	clock.Advance(90 * time.Second)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 90, body["uptime"])
	assert.EqualValues(t, 3, body["connections"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := NewServer(":0", fixedCounter(0), nil)
	require.NoError(t, err)
	metrics.LinesReceived.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relay_lines_received_total")
}
