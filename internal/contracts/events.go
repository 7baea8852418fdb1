package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type AlertAction string

const (
	ActionAck     AlertAction = "ack"
	ActionResolve AlertAction = "resolve"
)

func (a AlertAction) Valid() bool {
	return a == ActionAck || a == ActionResolve
}

// ID is an opaque identifier. The backend emits uuid strings but numeric ids
// are accepted and kept in their decimal form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Timestamp keeps the raw wire value so a malformed time degrades to its
// original text instead of failing the whole payload.
type Timestamp string

func (t Timestamp) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, string(t))
}

type DashboardSummary struct {
	OpenAlerts      int     `json:"open_alerts"`
	Acknowledged    int     `json:"acknowledged_alerts"`
	Resolved24h     int     `json:"resolved_last_24h"`
	AvgRiskScore24h float64 `json:"avg_risk_score_24h"`
}

type SeriesPoint struct {
	BucketStart      Timestamp `json:"bucket_start"`
	AvgRiskScore     float64   `json:"avg_risk_score"`
	RiskEvents       int       `json:"risk_events"`
	OpenAlertsOpened int       `json:"open_alerts_opened"`
}

type Hotspot struct {
	Country         string    `json:"country"`
	Region          string    `json:"region"`
	Commodity       string    `json:"commodity"`
	AvgRiskScore    float64   `json:"avg_risk_score"`
	LatestRiskScore float64   `json:"latest_risk_score"`
	ActiveAlerts    int       `json:"active_alerts"`
	LastEventAt     Timestamp `json:"last_event_at"`
}

type AlertRecord struct {
	ID          ID        `json:"id"`
	RiskEventID string    `json:"risk_event_id"`
	Country     string    `json:"country"`
	Region      string    `json:"region"`
	Commodity   string    `json:"commodity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RiskScore   float64   `json:"risk_score"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

type RiskEvent struct {
	ID                ID        `json:"id"`
	Timestamp         Timestamp `json:"timestamp"`
	Country           string    `json:"country"`
	Region            string    `json:"region"`
	Commodity         string    `json:"commodity"`
	RiskScore         float64   `json:"risk_score"`
	WindowMinutes     int       `json:"window_minutes"`
	RecommendedAction string    `json:"recommended_action"`
}

// ListEnvelope is the shape of every list endpoint. A missing items field
// decodes to a nil slice, which callers treat as empty.
type ListEnvelope[T any] struct {
	Hours int `json:"hours,omitempty"`
	Items []T `json:"items"`
}

type TransitionResult struct {
	ID     ID     `json:"id"`
	Status string `json:"status"`
}

func (a AlertRecord) Location() string {
	return a.Country + "/" + a.Region
}
