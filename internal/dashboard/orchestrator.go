// Package dashboard coordinates refresh cycles and alert actions. A refresh
// cycle fetches five resources concurrently and renders them only when all
// five succeed.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/metrics"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

type State int

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Fetcher is the read side of the query-api.
type Fetcher interface {
	Summary(ctx context.Context) (contracts.DashboardSummary, error)
	TimeSeries(ctx context.Context, hours int) ([]contracts.SeriesPoint, error)
	Hotspots(ctx context.Context, hours, limit int) ([]contracts.Hotspot, error)
	OpenAlerts(ctx context.Context, limit int) ([]contracts.AlertRecord, error)
	Risks(ctx context.Context, limit int) ([]contracts.RiskEvent, error)
}

type WindowSource interface {
	Hours() int
}

type Targets struct {
	Summary  view.SummaryTarget
	Trend    view.TrendTarget
	Hotspots view.HotspotsTarget
	Alerts   view.AlertsTarget
	Risks    view.RisksTarget
	Updated  view.UpdatedTarget
}

// BoardTargets points every region at the same board.
func BoardTargets(b *view.Board) Targets {
	return Targets{Summary: b, Trend: b, Hotspots: b, Alerts: b, Risks: b, Updated: b}
}

type Limits struct {
	Hotspots int
	Alerts   int
	Risks    int
}

func DefaultLimits() Limits {
	return Limits{Hotspots: 15, Alerts: 20, Risks: 20}
}

type Orchestrator struct {
	fetcher  Fetcher
	targets  Targets
	window   WindowSource
	notifier view.Notifier
	limits   Limits
	logger   zerolog.Logger
	now      func() time.Time

	actMu sync.RWMutex
	act   view.ActionFunc

	seq       atomic.Uint64
	inflight  atomic.Int32
	commitMu  sync.Mutex
	committed uint64
}

type Option func(*Orchestrator)

func WithLimits(l Limits) Option {
	return func(o *Orchestrator) { o.limits = l }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(fetcher Fetcher, targets Targets, window WindowSource, notifier view.Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:  fetcher,
		targets:  targets,
		window:   window,
		notifier: notifier,
		limits:   DefaultLimits(),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "orchestrator").Logger()
	return o
}

// SetActionHandler sets what alert controls are bound to on the next render.
func (o *Orchestrator) SetActionHandler(act view.ActionFunc) {
	o.actMu.Lock()
	o.act = act
	o.actMu.Unlock()
}

func (o *Orchestrator) State() State {
	if o.inflight.Load() > 0 {
		return StateRefreshing
	}
	return StateIdle
}

type cycleData struct {
	summary  contracts.DashboardSummary
	series   []contracts.SeriesPoint
	hotspots []contracts.Hotspot
	alerts   []contracts.AlertRecord
	risks    []contracts.RiskEvent
}

// Refresh runs one full cycle. Any failed fetch leaves every region as it
// was and surfaces a single notification. A cycle that completes after a
// newer one has already rendered is discarded.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.inflight.Add(1)
	defer o.inflight.Add(-1)

	seq := o.seq.Add(1)
	hours := o.window.Hours()
	started := time.Now()
	log := o.logger.With().Uint64("cycle", seq).Int("hours", hours).Logger()
	metrics.WindowHours.Set(float64(hours))

	data, err := o.fetchAll(ctx, hours)
	metrics.RefreshDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.RefreshCyclesTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("dashboard load failed")
		o.notifier.Notify("Dashboard load failed: " + err.Error())
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	o.commitMu.Lock()
	defer o.commitMu.Unlock()
	if seq < o.committed {
		metrics.RefreshCyclesTotal.WithLabelValues("stale").Inc()
		log.Debug().Uint64("committed", o.committed).Msg("discarding stale cycle")
		return nil
	}
	o.committed = seq
	o.render(data)
	metrics.RefreshCyclesTotal.WithLabelValues("rendered").Inc()
	log.Debug().Dur("took", time.Since(started)).Int("alerts", len(data.alerts)).Msg("dashboard rendered")
	return nil
}

// fetchAll returns as soon as any fetch fails, without waiting for the
// others. Fetches still running are not cancelled; their results are
// dropped.
func (o *Orchestrator) fetchAll(ctx context.Context, hours int) (cycleData, error) {
	var data cycleData
	var g errgroup.Group
	failed := make(chan error, 5)

	fetch := func(resource string, fn func() error) {
		g.Go(func() error {
			started := time.Now()
			err := fn()
			metrics.ObserveFetch(resource, started, err)
			if err != nil {
				failed <- err
			}
			return err
		})
	}

	fetch("summary", func() (err error) {
		data.summary, err = o.fetcher.Summary(ctx)
		return err
	})
	fetch("timeseries", func() (err error) {
		data.series, err = o.fetcher.TimeSeries(ctx, hours)
		return err
	})
	fetch("hotspots", func() (err error) {
		data.hotspots, err = o.fetcher.Hotspots(ctx, hours, o.limits.Hotspots)
		return err
	})
	fetch("alerts", func() (err error) {
		data.alerts, err = o.fetcher.OpenAlerts(ctx, o.limits.Alerts)
		return err
	})
	fetch("risks", func() (err error) {
		data.risks, err = o.fetcher.Risks(ctx, o.limits.Risks)
		return err
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-failed:
		return cycleData{}, err
	case err := <-done:
		if err != nil {
			return cycleData{}, err
		}
		return data, nil
	}
}

func (o *Orchestrator) render(data cycleData) {
	o.actMu.RLock()
	act := o.act
	o.actMu.RUnlock()
	if act == nil {
		act = func(context.Context, contracts.ID, contracts.AlertAction) error { return ErrNoDispatcher }
	}

	view.RenderSummary(o.targets.Summary, data.summary)
	view.RenderTrend(o.targets.Trend, data.series)
	view.RenderHotspots(o.targets.Hotspots, data.hotspots)
	view.RenderAlerts(o.targets.Alerts, data.alerts, act)
	view.RenderRisks(o.targets.Risks, data.risks)
	o.targets.Updated.SetUpdated(o.now())
}
