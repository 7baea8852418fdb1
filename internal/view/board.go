package view

import (
	"context"
	"slices"
	"sync"
	"time"
)

type Region string

const (
	RegionMetrics  Region = "metrics"
	RegionTrend    Region = "trend"
	RegionHotspots Region = "hotspots"
	RegionAlerts   Region = "alerts"
	RegionRisks    Region = "risks"
	RegionUpdated  Region = "updated"
	RegionNotice   Region = "notice"
)

// Board holds the rendered content of every region. It is safe for
// concurrent use; renderers replace whole regions under its lock.
type Board struct {
	mu        sync.RWMutex
	summary   SummaryView
	trend     TrendView
	hotspots  []HotspotRow
	alerts    AlertsView
	risks     []RiskRow
	updated   time.Time
	notice    string
	noticeAt  time.Time
	bindings  map[ControlKey]Binding
	disabled  map[ControlKey]bool
	revisions map[Region]uint64
	changed   chan struct{}
	now       func() time.Time
}

func NewBoard() *Board {
	return &Board{
		trend:     TrendView{Empty: true, Message: NoTrendData},
		bindings:  make(map[ControlKey]Binding),
		disabled:  make(map[ControlKey]bool),
		revisions: make(map[Region]uint64),
		changed:   make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Changes signals after any region is replaced. Signals coalesce.
func (b *Board) Changes() <-chan struct{} {
	return b.changed
}

func (b *Board) SetSummary(v SummaryView) {
	b.replace(RegionMetrics, func() { b.summary = v })
}

func (b *Board) SetTrend(v TrendView) {
	b.replace(RegionTrend, func() { b.trend = v })
}

func (b *Board) SetHotspots(rows []HotspotRow) {
	b.replace(RegionHotspots, func() { b.hotspots = rows })
}

func (b *Board) SetAlerts(v AlertsView) {
	b.replace(RegionAlerts, func() { b.alerts = v })
}

// Bind swaps the full binding set; bindings from the previous table are gone.
func (b *Board) Bind(bindings map[ControlKey]Binding) {
	b.mu.Lock()
	b.bindings = bindings
	b.mu.Unlock()
}

func (b *Board) SetRisks(rows []RiskRow) {
	b.replace(RegionRisks, func() { b.risks = rows })
}

func (b *Board) SetUpdated(t time.Time) {
	b.replace(RegionUpdated, func() { b.updated = t })
}

func (b *Board) Notify(msg string) {
	b.replace(RegionNotice, func() {
		b.notice = msg
		b.noticeAt = b.now()
	})
}

func (b *Board) ClearNotice() {
	b.replace(RegionNotice, func() {
		b.notice = ""
		b.noticeAt = time.Time{}
	})
}

// Click runs the handler currently bound to key.
func (b *Board) Click(ctx context.Context, key ControlKey) error {
	b.mu.RLock()
	fn, ok := b.bindings[key]
	b.mu.RUnlock()
	if !ok {
		return ErrNoBinding
	}
	return fn(ctx)
}

// BindingCount reports how many controls currently have a live handler.
func (b *Board) BindingCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.bindings)
}

// TryDisable marks a control disabled. It reports false when the control was
// already disabled.
func (b *Board) TryDisable(key ControlKey) bool {
	b.mu.Lock()
	if b.disabled[key] {
		b.mu.Unlock()
		return false
	}
	b.disabled[key] = true
	b.mu.Unlock()
	b.signal()
	return true
}

func (b *Board) Enable(key ControlKey) {
	b.mu.Lock()
	delete(b.disabled, key)
	b.mu.Unlock()
	b.signal()
}

func (b *Board) Disabled(key ControlKey) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.disabled[key]
}

func (b *Board) Revision(r Region) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisions[r]
}

type Snapshot struct {
	Summary  SummaryView  `json:"summary"`
	Trend    TrendView    `json:"trend"`
	Hotspots []HotspotRow `json:"hotspots"`
	Alerts   AlertsView   `json:"alerts"`
	Risks    []RiskRow    `json:"risks"`
	Updated  time.Time    `json:"updated"`
	Notice   string       `json:"notice,omitempty"`
	NoticeAt time.Time    `json:"notice_at"`
}

// Snapshot returns a deep copy with each control's disabled flag applied.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	alerts := AlertsView{Rows: make([]AlertRow, len(b.alerts.Rows))}
	for i, row := range b.alerts.Rows {
		row.Controls = slices.Clone(row.Controls)
		for j := range row.Controls {
			row.Controls[j].Disabled = b.disabled[row.Controls[j].Key]
		}
		alerts.Rows[i] = row
	}
	trend := b.trend
	trend.Bars = slices.Clone(b.trend.Bars)

	return Snapshot{
		Summary:  SummaryView{Cards: slices.Clone(b.summary.Cards)},
		Trend:    trend,
		Hotspots: slices.Clone(b.hotspots),
		Alerts:   alerts,
		Risks:    slices.Clone(b.risks),
		Updated:  b.updated,
		Notice:   b.notice,
		NoticeAt: b.noticeAt,
	}
}

func (b *Board) replace(r Region, fn func()) {
	b.mu.Lock()
	fn()
	b.revisions[r]++
	b.mu.Unlock()
	b.signal()
}

func (b *Board) signal() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}
