package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

func renderedBoard() *view.Board {
	b := view.NewBoard()
	view.RenderSummary(b, contracts.DashboardSummary{OpenAlerts: 3, Acknowledged: 1, Resolved24h: 4, AvgRiskScore24h: 61.234})
	view.RenderTrend(b, []contracts.SeriesPoint{
		{BucketStart: "2024-03-01T10:00:00Z", AvgRiskScore: 40, RiskEvents: 2},
		{BucketStart: "2024-03-01T11:00:00Z", AvgRiskScore: 80, RiskEvents: 5},
	})
	view.RenderHotspots(b, []contracts.Hotspot{{Country: "EG", Region: "Suez", Commodity: "oil", AvgRiskScore: 77.5, ActiveAlerts: 2}})
	view.RenderAlerts(b, []contracts.AlertRecord{{ID: "1", Country: "PA", Region: "Canal", Commodity: "grain", RiskScore: 93, CreatedAt: "not-a-time"}}, nil)
	view.RenderRisks(b, []contracts.RiskEvent{{Timestamp: "bad", Country: "CN", Region: "Shanghai", Commodity: "steel", RiskScore: 55.5}})
	return b
}

func TestPaintPlainBoard(t *testing.T) {
	b := renderedBoard()
	var out bytes.Buffer
	Paint(&out, Frame{Snapshot: b.Snapshot(), Hours: 24, Choices: []int{6, 24}, State: "idle"}, Palette{})

	text := out.String()
	assert.NotContains(t, text, "\033[")
	assert.Contains(t, text, "Updated: never")
	assert.Contains(t, text, "Window: 24h")
	assert.Contains(t, text, "Open Alerts: 3")
	assert.Contains(t, text, "Avg Risk (24h): 61.23")
	assert.Contains(t, text, "Suez")
	assert.Contains(t, text, "77.50")
	assert.Contains(t, text, "PA/Canal")
	assert.Contains(t, text, "not-a-time")
	assert.Contains(t, text, "[ack] [resolve]")
	assert.Contains(t, text, "55.50")
	assert.Contains(t, text, "w <6|24> window")
	assert.Contains(t, text, "last:  ")
}

func TestPaintShowsNoticeAndUpdated(t *testing.T) {
	b := view.NewBoard()
	b.Notify("Dashboard load failed: boom")
	updated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	b.SetUpdated(updated)

	var out bytes.Buffer
	Paint(&out, Frame{Snapshot: b.Snapshot(), Hours: 6, State: "idle"}, Palette{})

	assert.Contains(t, out.String(), "Dashboard load failed: boom")
	assert.Contains(t, out.String(), "Updated: 2024-03-01 10:00:00")
	assert.Contains(t, out.String(), view.NoTrendData)
}

func TestPaintColorsBySeverity(t *testing.T) {
	b := renderedBoard()
	var out bytes.Buffer
	Paint(&out, Frame{Snapshot: b.Snapshot(), Hours: 24, State: "idle"}, Palette{Color: true})

	assert.Contains(t, out.String(), "\033[91m93.0\033[0m")
	assert.Contains(t, out.String(), "\033[32m55.50\033[0m")
}

func TestPaintDisabledControl(t *testing.T) {
	b := renderedBoard()
	b.TryDisable(view.ControlKey{AlertID: "1", Action: contracts.ActionResolve})

	var out bytes.Buffer
	Paint(&out, Frame{Snapshot: b.Snapshot(), Hours: 24, State: "idle"}, Palette{})

	assert.Contains(t, out.String(), "[ack] […]")
}

func TestPaintTrendCutsTallBars(t *testing.T) {
	var out bytes.Buffer
	paintTrend(&out, view.TrendView{Bars: []view.Bar{
		{HeightPercent: 250, Tip: "a"},
		{HeightPercent: 2, Tip: "b"},
	}}, Palette{})

	lines := strings.Split(out.String(), "\n")
	columns := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "  │") {
			columns++
			assert.True(t, strings.HasPrefix(line, "  │█"), line)
		}
	}
	assert.Equal(t, chartRows, columns)
	assert.Equal(t, 1, strings.Count(out.String(), "██"))
}
