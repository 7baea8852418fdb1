// Package queryapi is an in-memory stand-in for the query-api service. It
// serves the same routes, limits and error bodies, either from fixed data or
// from risk events fed through Ingest.
package queryapi

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/format"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/httpx"
)

const (
	DefaultAlertThreshold = 72
	DefaultAlertCooldown  = 30 * time.Minute

	maxHistory = 5000
)

type Memory struct {
	mu       sync.Mutex
	alerts   []contracts.AlertRecord
	series   []contracts.SeriesPoint
	hotspots []contracts.Hotspot
	risks    []contracts.RiskEvent
	avgRisk  float64
	resolved int
	failing  map[string]int
	calls    map[string]int
	queries  []string

	// history holds ingested events newest first; when non-empty the
	// dashboard routes aggregate it instead of serving fixed data.
	history   []observed
	opened    map[contracts.ID]time.Time
	threshold float64
	cooldown  time.Duration
	now       func() time.Time
}

type observed struct {
	event contracts.RiskEvent
	at    time.Time
}

func New() *Memory {
	return &Memory{
		failing:   map[string]int{},
		calls:     map[string]int{},
		opened:    map[contracts.ID]time.Time{},
		threshold: DefaultAlertThreshold,
		cooldown:  DefaultAlertCooldown,
		now:       time.Now,
	}
}

func (q *Memory) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

// SetAlertPolicy changes when Ingest opens an alert.
func (q *Memory) SetAlertPolicy(threshold float64, cooldown time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.threshold = threshold
	q.cooldown = cooldown
}

func (q *Memory) SetAlerts(alerts ...contracts.AlertRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.alerts = alerts
}

func (q *Memory) SetSeries(points ...contracts.SeriesPoint) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.series = points
}

func (q *Memory) SetHotspots(h ...contracts.Hotspot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.hotspots = h
}

func (q *Memory) SetRisks(r ...contracts.RiskEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.risks = r
}

func (q *Memory) SetAvgRisk(v float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.avgRisk = v
}

// Fail makes route answer with status until cleared with Fail(route, 0).
// Routes are named summary, timeseries, hotspots, alerts, risks, transition.
func (q *Memory) Fail(route string, status int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if status == 0 {
		delete(q.failing, route)
		return
	}
	q.failing[route] = status
}

func (q *Memory) Calls(route string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls[route]
}

// Queries lists raw query strings of windowed requests in arrival order.
func (q *Memory) Queries() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.queries...)
}

func (q *Memory) Alert(id contracts.ID) (contracts.AlertRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, a := range q.alerts {
		if a.ID == id {
			return a, true
		}
	}
	return contracts.AlertRecord{}, false
}

// Ingest records a scored risk event and opens an alert for it when the
// score reaches the threshold and no open alert for the same
// country/region/commodity was created within the cooldown.
func (q *Memory) Ingest(event contracts.RiskEvent) (contracts.AlertRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now().UTC()
	if event.ID == "" {
		event.ID = contracts.ID(uuid.NewString())
	}
	at, err := event.Timestamp.Time()
	if err != nil {
		at = now
		event.Timestamp = stamp(now)
	}
	if event.RecommendedAction == "" {
		event.RecommendedAction = format.Recommendation(event.RiskScore)
	}

	q.history = append([]observed{{event: event, at: at}}, q.history...)
	if len(q.history) > maxHistory {
		q.history = q.history[:maxHistory]
	}
	q.risks = append([]contracts.RiskEvent{event}, q.risks...)
	if len(q.risks) > maxHistory {
		q.risks = q.risks[:maxHistory]
	}

	if event.RiskScore < q.threshold || q.inCooldown(event, now) {
		return contracts.AlertRecord{}, false
	}
	alert := contracts.AlertRecord{
		ID:          contracts.ID(uuid.NewString()),
		RiskEventID: string(event.ID),
		Country:     event.Country,
		Region:      event.Region,
		Commodity:   event.Commodity,
		Title:       fmt.Sprintf("High disruption risk for %s", event.Commodity),
		Description: fmt.Sprintf("%s/%s scored %.2f. %s", event.Country, event.Region, event.RiskScore, event.RecommendedAction),
		RiskScore:   event.RiskScore,
		Severity:    string(format.SeverityTier(event.RiskScore)),
		Status:      "open",
		CreatedAt:   stamp(now),
		UpdatedAt:   stamp(now),
	}
	q.alerts = append([]contracts.AlertRecord{alert}, q.alerts...)
	q.opened[alert.ID] = now
	return alert, true
}

func (q *Memory) inCooldown(event contracts.RiskEvent, now time.Time) bool {
	for _, a := range q.alerts {
		if a.Status != "open" || a.Country != event.Country || a.Region != event.Region || a.Commodity != event.Commodity {
			continue
		}
		if created, ok := q.opened[a.ID]; ok && now.Sub(created) < q.cooldown {
			return true
		}
	}
	return false
}

func (q *Memory) Routes() http.Handler {
	router := chi.NewRouter()

	router.Get("/v1/dashboard/summary", q.guard("summary", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, q.summary())
	}))

	router.Get("/v1/dashboard/timeseries", q.guard("timeseries", func(w http.ResponseWriter, r *http.Request) {
		hours := parseBoundedInt(r.URL.Query().Get("hours"), 24, 1, 168)
		q.queries = append(q.queries, r.URL.RawQuery)
		items := q.series
		if len(q.history) > 0 {
			items = q.aggregateSeries(hours)
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"hours": hours, "items": items})
	}))

	router.Get("/v1/dashboard/hotspots", q.guard("hotspots", func(w http.ResponseWriter, r *http.Request) {
		hours := parseBoundedInt(r.URL.Query().Get("hours"), 24, 1, 168)
		limit := parseBoundedInt(r.URL.Query().Get("limit"), 20, 1, 100)
		q.queries = append(q.queries, r.URL.RawQuery)
		items := q.hotspots
		if len(q.history) > 0 {
			items = q.aggregateHotspots(hours)
		}
		if len(items) > limit {
			items = items[:limit]
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"hours": hours, "items": items})
	}))

	router.Get("/v1/alerts", q.guard("alerts", func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		limit := parseLimit(r.URL.Query().Get("limit"), 100)
		items := make([]contracts.AlertRecord, 0, len(q.alerts))
		for _, a := range q.alerts {
			if status == "" || a.Status == status {
				items = append(items, a)
			}
		}
		if len(items) > limit {
			items = items[:limit]
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
	}))

	router.Get("/v1/risks", q.guard("risks", func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r.URL.Query().Get("limit"), 100)
		items := q.risks
		if len(items) > limit {
			items = items[:limit]
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
	}))

	router.Patch("/v1/alerts/{id}/ack", q.guard("transition", func(w http.ResponseWriter, r *http.Request) {
		q.transition(w, contracts.ID(chi.URLParam(r, "id")), "acknowledged")
	}))
	router.Patch("/v1/alerts/{id}/resolve", q.guard("transition", func(w http.ResponseWriter, r *http.Request) {
		q.transition(w, contracts.ID(chi.URLParam(r, "id")), "resolved")
	}))

	return router
}

// guard serialises handlers, counts calls and applies injected failures.
func (q *Memory) guard(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.calls[route]++
		if status, ok := q.failing[route]; ok {
			httpx.WriteJSON(w, status, map[string]any{"error": route + " unavailable"})
			return
		}
		next(w, r)
	}
}

func (q *Memory) summary() contracts.DashboardSummary {
	summary := contracts.DashboardSummary{Resolved24h: q.resolved, AvgRiskScore24h: q.avgRisk}
	for _, a := range q.alerts {
		switch a.Status {
		case "open":
			summary.OpenAlerts++
		case "acknowledged":
			summary.Acknowledged++
		}
	}
	if len(q.history) > 0 {
		cutoff := q.now().Add(-24 * time.Hour)
		total, n := 0.0, 0
		for _, o := range q.history {
			if o.at.Before(cutoff) {
				continue
			}
			total += o.event.RiskScore
			n++
		}
		summary.AvgRiskScore24h = 0
		if n > 0 {
			summary.AvgRiskScore24h = round2(total / float64(n))
		}
	}
	return summary
}

// aggregateSeries returns one point per hour from the bucket hours ago up to
// the current one, oldest first. Empty buckets are zero.
func (q *Memory) aggregateSeries(hours int) []contracts.SeriesPoint {
	now := q.now().UTC()
	first := now.Add(-time.Duration(hours) * time.Hour).Truncate(time.Hour)
	last := now.Truncate(time.Hour)

	type bucket struct {
		total  float64
		events int
		opened int
	}
	buckets := map[time.Time]*bucket{}
	for t := first; !t.After(last); t = t.Add(time.Hour) {
		buckets[t] = &bucket{}
	}
	for _, o := range q.history {
		if b, ok := buckets[o.at.UTC().Truncate(time.Hour)]; ok {
			b.total += o.event.RiskScore
			b.events++
		}
	}
	for _, a := range q.alerts {
		created, err := a.CreatedAt.Time()
		if err != nil || a.Status != "open" {
			continue
		}
		if b, ok := buckets[created.UTC().Truncate(time.Hour)]; ok {
			b.opened++
		}
	}

	points := make([]contracts.SeriesPoint, 0, len(buckets))
	for t := first; !t.After(last); t = t.Add(time.Hour) {
		b := buckets[t]
		point := contracts.SeriesPoint{BucketStart: stamp(t), RiskEvents: b.events, OpenAlertsOpened: b.opened}
		if b.events > 0 {
			point.AvgRiskScore = round2(b.total / float64(b.events))
		}
		points = append(points, point)
	}
	return points
}

// aggregateHotspots groups the window's events by country, region and
// commodity, highest average first.
func (q *Memory) aggregateHotspots(hours int) []contracts.Hotspot {
	cutoff := q.now().Add(-time.Duration(hours) * time.Hour)

	type group struct {
		hotspot contracts.Hotspot
		total   float64
		n       int
		last    time.Time
	}
	groups := map[string]*group{}
	for _, o := range q.history {
		if o.at.Before(cutoff) {
			continue
		}
		e := o.event
		key := e.Country + "|" + e.Region + "|" + e.Commodity
		g, ok := groups[key]
		if !ok {
			g = &group{hotspot: contracts.Hotspot{Country: e.Country, Region: e.Region, Commodity: e.Commodity}}
			groups[key] = g
		}
		g.total += e.RiskScore
		g.n++
		g.hotspot.LatestRiskScore = math.Max(g.hotspot.LatestRiskScore, e.RiskScore)
		if o.at.After(g.last) {
			g.last = o.at
		}
	}

	ranked := make([]*group, 0, len(groups))
	for _, g := range groups {
		g.hotspot.AvgRiskScore = round2(g.total / float64(g.n))
		g.hotspot.LastEventAt = stamp(g.last)
		for _, a := range q.alerts {
			if a.Country == g.hotspot.Country && a.Region == g.hotspot.Region && a.Commodity == g.hotspot.Commodity &&
				(a.Status == "open" || a.Status == "acknowledged") {
				g.hotspot.ActiveAlerts++
			}
		}
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.hotspot.AvgRiskScore != b.hotspot.AvgRiskScore {
			return a.hotspot.AvgRiskScore > b.hotspot.AvgRiskScore
		}
		if a.hotspot.ActiveAlerts != b.hotspot.ActiveAlerts {
			return a.hotspot.ActiveAlerts > b.hotspot.ActiveAlerts
		}
		return a.last.After(b.last)
	})

	out := make([]contracts.Hotspot, 0, len(ranked))
	for _, g := range ranked {
		out = append(out, g.hotspot)
	}
	return out
}

func (q *Memory) transition(w http.ResponseWriter, id contracts.ID, status string) {
	for i, a := range q.alerts {
		if a.ID != id {
			continue
		}
		q.alerts[i].Status = status
		q.alerts[i].UpdatedAt = stamp(q.now().UTC())
		if status == "resolved" {
			q.resolved++
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
		return
	}
	httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
}

func stamp(t time.Time) contracts.Timestamp {
	return contracts.Timestamp(t.Format(time.RFC3339Nano))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if n <= 0 {
		return fallback
	}
	return n
}

func parseBoundedInt(raw string, fallback, min, max int) int {
	n := parseLimit(raw, fallback)
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
