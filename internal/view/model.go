// Package view projects API payloads onto addressable view regions. The
// Board is the in-memory render target; terminal and web surfaces only
// read snapshots of it.
package view

import (
	"context"
	"errors"
	"time"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/format"
)

var ErrNoBinding = errors.New("no action bound to control")

type MetricCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SummaryView struct {
	Cards []MetricCard `json:"cards"`
}

type Bar struct {
	HeightPercent float64 `json:"height_percent"`
	Tip           string  `json:"tip"`
}

type TrendView struct {
	Empty   bool    `json:"empty"`
	Message string  `json:"message,omitempty"`
	Max     float64 `json:"max"`
	Bars    []Bar   `json:"bars"`
}

type HotspotRow struct {
	Country      string `json:"country"`
	Region       string `json:"region"`
	Commodity    string `json:"commodity"`
	AvgRisk      string `json:"avg_risk"`
	ActiveAlerts int    `json:"active_alerts"`
	LastEventAt  string `json:"last_event_at,omitempty"`
}

// ControlKey addresses one action button.
type ControlKey struct {
	AlertID contracts.ID          `json:"alert_id"`
	Action  contracts.AlertAction `json:"action"`
}

type Control struct {
	Key      ControlKey `json:"key"`
	Label    string     `json:"label"`
	Disabled bool       `json:"disabled"`
}

type AlertRow struct {
	ID        contracts.ID `json:"id"`
	CreatedAt string       `json:"created_at"`
	Location  string       `json:"location"`
	Commodity string       `json:"commodity"`
	Title     string       `json:"title,omitempty"`
	Score     string       `json:"score"`
	Severity  format.Tier  `json:"severity"`
	Hint      string       `json:"hint,omitempty"`
	Controls  []Control    `json:"controls"`
}

type AlertsView struct {
	Rows []AlertRow `json:"rows"`
}

type RiskRow struct {
	Timestamp string      `json:"timestamp"`
	Country   string      `json:"country"`
	Region    string      `json:"region"`
	Commodity string      `json:"commodity"`
	Score     string      `json:"score"`
	Severity  format.Tier `json:"severity"`
	Action    string      `json:"recommended_action,omitempty"`
}

// Binding is the handler attached to a control.
type Binding func(ctx context.Context) error

// ActionFunc is what alert controls are bound to.
type ActionFunc func(ctx context.Context, id contracts.ID, action contracts.AlertAction) error

type SummaryTarget interface {
	SetSummary(SummaryView)
}

type TrendTarget interface {
	SetTrend(TrendView)
}

type HotspotsTarget interface {
	SetHotspots([]HotspotRow)
}

type AlertsTarget interface {
	SetAlerts(AlertsView)
	Bind(map[ControlKey]Binding)
}

type RisksTarget interface {
	SetRisks([]RiskRow)
}

type UpdatedTarget interface {
	SetUpdated(time.Time)
}

// Notifier surfaces a failure to the user.
type Notifier interface {
	Notify(msg string)
}
