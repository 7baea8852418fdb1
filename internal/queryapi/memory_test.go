package queryapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/client"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/format"
)

var testNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func newMemory(t *testing.T) (*Memory, *client.Client) {
	t.Helper()
	mem := New()
	mem.SetClock(func() time.Time { return testNow })
	srv := httptest.NewServer(mem.Routes())
	t.Cleanup(srv.Close)
	return mem, client.New(srv.URL)
}

func event(country, commodity string, score float64, at time.Time) contracts.RiskEvent {
	return contracts.RiskEvent{
		Timestamp: stamp(at),
		Country:   country,
		Region:    "coastal",
		Commodity: commodity,
		RiskScore: score,
	}
}

func TestIngestOpensAlertsWithCooldown(t *testing.T) {
	mem := New()
	now := testNow
	mem.SetClock(func() time.Time { return now })

	alert, ok := mem.Ingest(event("IN", "rice", 80, now))
	require.True(t, ok)
	assert.Equal(t, "open", alert.Status)
	assert.Equal(t, "high", alert.Severity)
	assert.Equal(t, "High disruption risk for rice", alert.Title)
	assert.NotEmpty(t, alert.ID)
	assert.NotEmpty(t, alert.RiskEventID)

	_, ok = mem.Ingest(event("IN", "rice", 95, now))
	assert.False(t, ok, "same key inside cooldown")

	_, ok = mem.Ingest(event("BR", "rice", 95, now))
	assert.True(t, ok, "different key")

	_, ok = mem.Ingest(event("JP", "diesel", 50, now))
	assert.False(t, ok, "below threshold")

	now = now.Add(DefaultAlertCooldown + time.Minute)
	_, ok = mem.Ingest(event("IN", "rice", 90, now))
	assert.True(t, ok, "cooldown elapsed")
}

func TestIngestFillsDefaults(t *testing.T) {
	mem := New()
	mem.SetClock(func() time.Time { return testNow })

	mem.Ingest(contracts.RiskEvent{Timestamp: "garbage", Country: "ZA", Commodity: "wheat", RiskScore: 40})

	mem.mu.Lock()
	got := mem.risks[0]
	mem.mu.Unlock()
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, stamp(testNow), got.Timestamp)
	assert.Equal(t, format.Recommendation(40), got.RecommendedAction)
}

func TestAlertPolicy(t *testing.T) {
	mem := New()
	mem.SetAlertPolicy(30, 0)

	_, ok := mem.Ingest(event("DE", "insulin", 31, testNow))
	assert.True(t, ok)
	_, ok = mem.Ingest(event("DE", "insulin", 31, testNow))
	assert.True(t, ok, "zero cooldown")
}

func TestAggregatedDashboardRoutes(t *testing.T) {
	mem, api := newMemory(t)
	ctx := context.Background()

	mem.Ingest(event("US", "diesel", 60, testNow.Add(-30*time.Minute)))
	mem.Ingest(event("NG", "wheat", 80, testNow.Add(-90*time.Minute)))

	summary, err := api.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OpenAlerts)
	assert.Equal(t, 70.0, summary.AvgRiskScore24h)

	series, err := api.TimeSeries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, contracts.Timestamp("2024-03-01T11:00:00Z"), series[0].BucketStart)
	assert.Equal(t, 80.0, series[0].AvgRiskScore)
	assert.Equal(t, 1, series[0].RiskEvents)
	assert.Equal(t, 60.0, series[1].AvgRiskScore)
	assert.Equal(t, 1, series[1].OpenAlertsOpened)

	hotspots, err := api.Hotspots(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, "US", hotspots[0].Country)

	hotspots, err = api.Hotspots(ctx, 24, 10)
	require.NoError(t, err)
	require.Len(t, hotspots, 2)
	assert.Equal(t, "NG", hotspots[0].Country)
	assert.Equal(t, 1, hotspots[0].ActiveAlerts)
	assert.Equal(t, 80.0, hotspots[0].LatestRiskScore)

	risks, err := api.Risks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, "NG", risks[0].Country, "newest ingest first")

	assert.Equal(t, []string{"hours=1", "hours=1&limit=10", "hours=24&limit=10"}, mem.Queries())
}

func TestTransitionRoutes(t *testing.T) {
	mem, api := newMemory(t)
	ctx := context.Background()
	alert, ok := mem.Ingest(event("ID", "antibiotics", 91, testNow))
	require.True(t, ok)

	res, err := api.TransitionAlert(ctx, alert.ID, contracts.ActionResolve)
	require.NoError(t, err)
	assert.Equal(t, "resolved", res.Status)

	summary, err := api.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.OpenAlerts)
	assert.Equal(t, 1, summary.Resolved24h)

	_, err = api.TransitionAlert(ctx, "missing", contracts.ActionAck)
	var rf *client.RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.StatusNotFound, rf.Status)
	assert.Contains(t, rf.Message, "alert not found")
}

func TestInjectedFailure(t *testing.T) {
	mem, api := newMemory(t)
	mem.Fail("risks", http.StatusServiceUnavailable)

	_, err := api.Risks(context.Background(), 5)
	var rf *client.RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.StatusServiceUnavailable, rf.Status)
	assert.Contains(t, rf.Message, "risks unavailable")
	assert.Equal(t, 1, mem.Calls("risks"))

	mem.Fail("risks", 0)
	_, err = api.Risks(context.Background(), 5)
	assert.NoError(t, err)
}

func TestSimulatorIsDeterministicPerSeed(t *testing.T) {
	a := NewSimulator(New(), 7, time.Hour, zerolog.Nop())
	b := NewSimulator(New(), 7, time.Hour, zerolog.Nop())

	for i := 0; i < 20; i++ {
		at := testNow.Add(time.Duration(i) * time.Minute)
		ea, eb := a.Step(at), b.Step(at)
		assert.Equal(t, ea.Country+ea.Region+ea.Commodity, eb.Country+eb.Region+eb.Commodity)
		assert.Equal(t, ea.RiskScore, eb.RiskScore)
		assert.GreaterOrEqual(t, ea.RiskScore, 0.0)
		assert.LessOrEqual(t, ea.RiskScore, 100.0)
		assert.Equal(t, 60, ea.WindowMinutes)
	}
}

func TestSimulatorBackfillPopulatesTrend(t *testing.T) {
	mem, api := newMemory(t)
	sim := NewSimulator(mem, 1, time.Hour, zerolog.Nop())

	sim.Backfill(testNow, 48, 24*time.Hour)

	risks, err := api.Risks(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, risks, 48)

	series, err := api.TimeSeries(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, series, 25)
	total := 0
	for _, p := range series {
		total += p.RiskEvents
	}
	assert.Equal(t, 48, total)
}

func TestSignalScoreWeights(t *testing.T) {
	base := signal{severity: 10, confidence: 1, value: 100}

	base.source = sourceNews
	assert.Equal(t, 100.0, signalScore(base))

	low := signal{source: sourcePriceSpike, severity: 2, confidence: 0.5, value: 50}
	assert.InDelta(t, (10+10+20)*1.10, signalScore(low), 1e-9)
}
