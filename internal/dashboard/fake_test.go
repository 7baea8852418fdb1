package dashboard

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

// fakeAPI serves canned payloads; a non-nil err for a resource fails it.
type fakeAPI struct {
	mu       sync.Mutex
	summary  contracts.DashboardSummary
	series   []contracts.SeriesPoint
	hotspots []contracts.Hotspot
	alerts   []contracts.AlertRecord
	risks    []contracts.RiskEvent
	errs     map[string]error

	// gate, when set, is called at the start of the summary fetch.
	gate func(ctx context.Context)

	hoursSeen  []int
	limitsSeen map[string]int
	summaries  atomic.Int32
	riskCalls  atomic.Int32

	transitions    []view.ControlKey
	transitionErr  error
	transitionHook func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{errs: map[string]error{}, limitsSeen: map[string]int{}}
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) fail(resource string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[resource]
}

func (f *fakeAPI) Summary(ctx context.Context) (contracts.DashboardSummary, error) {
	f.summaries.Add(1)
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		gate(ctx)
	}
	if err := f.fail("summary"); err != nil {
		return contracts.DashboardSummary{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, nil
}

func (f *fakeAPI) TimeSeries(_ context.Context, hours int) ([]contracts.SeriesPoint, error) {
	f.mu.Lock()
	f.hoursSeen = append(f.hoursSeen, hours)
	f.mu.Unlock()
	if err := f.fail("timeseries"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.series, nil
}

func (f *fakeAPI) Hotspots(_ context.Context, hours, limit int) ([]contracts.Hotspot, error) {
	f.mu.Lock()
	f.hoursSeen = append(f.hoursSeen, hours)
	f.limitsSeen["hotspots"] = limit
	f.mu.Unlock()
	if err := f.fail("hotspots"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hotspots, nil
}

func (f *fakeAPI) OpenAlerts(_ context.Context, limit int) ([]contracts.AlertRecord, error) {
	f.mu.Lock()
	f.limitsSeen["alerts"] = limit
	f.mu.Unlock()
	if err := f.fail("alerts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alerts, nil
}

func (f *fakeAPI) Risks(_ context.Context, limit int) ([]contracts.RiskEvent, error) {
	f.mu.Lock()
	f.limitsSeen["risks"] = limit
	f.mu.Unlock()
	if err := f.fail("risks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.riskCalls.Add(1)
	return f.risks, nil
}

func (f *fakeAPI) TransitionAlert(_ context.Context, id contracts.ID, action contracts.AlertAction) (contracts.TransitionResult, error) {
	f.mu.Lock()
	f.transitions = append(f.transitions, view.ControlKey{AlertID: id, Action: action})
	hook := f.transitionHook
	err := f.transitionErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return contracts.TransitionResult{}, err
	}
	return contracts.TransitionResult{ID: id, Status: "resolved"}, nil
}

// countingRefresher records how many refreshes an action triggered.
type countingRefresher struct {
	n   atomic.Int32
	err error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.n.Add(1)
	return c.err
}

// notices collects notifications.
type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) Notify(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *notices) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}
