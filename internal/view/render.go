package view

import (
	"context"
	"fmt"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/format"
)

const NoTrendData = "No data in selected window."

func RenderSummary(t SummaryTarget, s contracts.DashboardSummary) {
	t.SetSummary(SummaryView{Cards: []MetricCard{
		{Label: "Open Alerts", Value: fmt.Sprint(s.OpenAlerts)},
		{Label: "Acknowledged", Value: fmt.Sprint(s.Acknowledged)},
		{Label: "Resolved (24h)", Value: fmt.Sprint(s.Resolved24h)},
		{Label: "Avg Risk (24h)", Value: format.Score(s.AvgRiskScore24h, 2)},
	}})
}

func RenderTrend(t TrendTarget, points []contracts.SeriesPoint) {
	if len(points) == 0 {
		t.SetTrend(TrendView{Empty: true, Message: NoTrendData})
		return
	}

	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = p.AvgRiskScore
	}
	max := format.SeriesMax(scores)

	bars := make([]Bar, 0, len(points))
	for _, p := range points {
		bars = append(bars, Bar{
			HeightPercent: format.BarHeightPercent(p.AvgRiskScore, max),
			Tip: fmt.Sprintf("%s | avg %s | events %d",
				format.Timestamp(p.BucketStart), format.Score(p.AvgRiskScore, 1), p.RiskEvents),
		})
	}
	t.SetTrend(TrendView{Max: max, Bars: bars})
}

func RenderHotspots(t HotspotsTarget, items []contracts.Hotspot) {
	rows := make([]HotspotRow, 0, len(items))
	for _, h := range items {
		rows = append(rows, HotspotRow{
			Country:      h.Country,
			Region:       h.Region,
			Commodity:    h.Commodity,
			AvgRisk:      format.Score(h.AvgRiskScore, 2),
			ActiveAlerts: h.ActiveAlerts,
			LastEventAt:  format.Timestamp(h.LastEventAt),
		})
	}
	t.SetHotspots(rows)
}

// RenderAlerts rebuilds the alerts table and rebinds every control, dropping
// the bindings of the previous table.
func RenderAlerts(t AlertsTarget, items []contracts.AlertRecord, act ActionFunc) {
	rows := make([]AlertRow, 0, len(items))
	bindings := make(map[ControlKey]Binding, 2*len(items))
	for _, a := range items {
		controls := []Control{
			{Key: ControlKey{AlertID: a.ID, Action: contracts.ActionAck}, Label: "Ack"},
			{Key: ControlKey{AlertID: a.ID, Action: contracts.ActionResolve}, Label: "Resolve"},
		}
		for _, c := range controls {
			key := c.Key
			bindings[key] = func(ctx context.Context) error {
				return act(ctx, key.AlertID, key.Action)
			}
		}
		rows = append(rows, AlertRow{
			ID:        a.ID,
			CreatedAt: format.Timestamp(a.CreatedAt),
			Location:  a.Location(),
			Commodity: a.Commodity,
			Title:     a.Title,
			Score:     format.Score(a.RiskScore, 1),
			Severity:  format.SeverityTier(a.RiskScore),
			Hint:      format.Recommendation(a.RiskScore),
			Controls:  controls,
		})
	}
	t.SetAlerts(AlertsView{Rows: rows})
	t.Bind(bindings)
}

func RenderRisks(t RisksTarget, items []contracts.RiskEvent) {
	rows := make([]RiskRow, 0, len(items))
	for _, r := range items {
		rows = append(rows, RiskRow{
			Timestamp: format.Timestamp(r.Timestamp),
			Country:   r.Country,
			Region:    r.Region,
			Commodity: r.Commodity,
			Score:     format.Score(r.RiskScore, 2),
			Severity:  format.SeverityTier(r.RiskScore),
			Action:    r.RecommendedAction,
		})
	}
	t.SetRisks(rows)
}
