package queryapi

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
)

type source string

const (
	sourceShippingLane   source = "shipping_lane"
	sourcePortCongestion source = "port_congestion"
	sourceWeather        source = "weather"
	sourcePriceSpike     source = "price_spike"
	sourceNews           source = "news"
)

var (
	countries   = []string{"US", "DE", "IN", "BR", "ZA", "ID", "JP", "NG"}
	regions     = []string{"north", "south", "west", "east", "metro", "coastal"}
	commodities = []string{"insulin", "diesel", "wheat", "rice", "antibiotics"}
	sources     = []source{sourceShippingLane, sourcePortCongestion, sourceWeather, sourcePriceSpike, sourceNews}
)

type signal struct {
	source     source
	country    string
	region     string
	commodity  string
	value      float64
	severity   int
	confidence float64
	at         time.Time
}

func (s signal) key() string {
	return s.country + "|" + s.region + "|" + s.commodity
}

// Simulator produces random disruption signals, scores them over a rolling
// window per country/region/commodity and feeds the result into a Memory.
type Simulator struct {
	mem     *Memory
	rng     *rand.Rand
	window  time.Duration
	history map[string][]signal
	logger  zerolog.Logger
}

func NewSimulator(mem *Memory, seed int64, window time.Duration, logger zerolog.Logger) *Simulator {
	if window <= 0 {
		window = time.Hour
	}
	return &Simulator{
		mem:     mem,
		rng:     rand.New(rand.NewSource(seed)),
		window:  window,
		history: make(map[string][]signal),
		logger:  logger.With().Str("component", "simulator").Logger(),
	}
}

// Step generates one signal, ingests its risk event and reports the event.
func (s *Simulator) Step(now time.Time) contracts.RiskEvent {
	sig := s.randomSignal(now)
	event := s.score(sig)
	if alert, ok := s.mem.Ingest(event); ok {
		s.logger.Info().
			Str("alert_id", string(alert.ID)).
			Str("country", alert.Country).
			Str("commodity", alert.Commodity).
			Float64("score", alert.RiskScore).
			Msg("alert created")
	}
	return event
}

// Backfill spreads n events evenly over the past span so a fresh stand-in
// has a populated trend.
func (s *Simulator) Backfill(now time.Time, n int, span time.Duration) {
	if n <= 0 {
		return
	}
	step := span / time.Duration(n)
	for i := n; i > 0; i-- {
		s.Step(now.Add(-time.Duration(i) * step))
	}
}

func (s *Simulator) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Step(now)
		}
	}
}

func (s *Simulator) randomSignal(now time.Time) signal {
	return signal{
		source:     sources[s.rng.Intn(len(sources))],
		country:    countries[s.rng.Intn(len(countries))],
		region:     regions[s.rng.Intn(len(regions))],
		commodity:  commodities[s.rng.Intn(len(commodities))],
		value:      float64(15 + s.rng.Intn(85)),
		severity:   2 + s.rng.Intn(9),
		confidence: 0.4 + s.rng.Float64()*0.6,
		at:         now.UTC(),
	}
}

// score averages the signal scores of the key's window, keeping at most the
// last 150 signals.
func (s *Simulator) score(sig signal) contracts.RiskEvent {
	key := sig.key()
	cutoff := sig.at.Add(-s.window)

	entries := append(s.history[key], sig)
	trimmed := entries[:0]
	for _, e := range entries {
		if e.at.After(cutoff) {
			trimmed = append(trimmed, e)
		}
	}
	if len(trimmed) > 150 {
		trimmed = trimmed[len(trimmed)-150:]
	}
	s.history[key] = trimmed

	total := 0.0
	for _, e := range trimmed {
		total += signalScore(e)
	}
	score := round2(clamp(total/float64(len(trimmed)), 0, 100))

	return contracts.RiskEvent{
		Timestamp:     stamp(sig.at),
		Country:       sig.country,
		Region:        sig.region,
		Commodity:     sig.commodity,
		RiskScore:     score,
		WindowMinutes: int(s.window.Minutes()),
	}
}

func signalScore(s signal) float64 {
	severity := clamp(float64(s.severity), 0, 10) * 5.0
	confidence := clamp(s.confidence, 0, 1) * 20.0
	valueComponent := clamp(s.value, 0, 100) / 100.0 * 40.0

	return clamp((severity+confidence+valueComponent)*sourceWeight(s.source), 0, 100)
}

func sourceWeight(src source) float64 {
	switch src {
	case sourceShippingLane:
		return 1.25
	case sourcePortCongestion:
		return 1.30
	case sourceWeather:
		return 1.20
	case sourcePriceSpike:
		return 1.10
	default:
		return 1.00
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
