package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveFetchCountsFailures(t *testing.T) {
	failures := FetchFailuresTotal.WithLabelValues("summary")
	before := counterValue(t, failures)

	ObserveFetch("summary", time.Now(), nil)
	ObserveFetch("summary", time.Now(), errors.New("boom"))

	assert.Equal(t, before+1, counterValue(t, failures))
}

func TestMetricsEndpoint(t *testing.T) {
	WindowHours.Set(24)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "supplyshock_dashboard_window_hours 24"))
}
