package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
)

func (c *Client) Summary(ctx context.Context) (contracts.DashboardSummary, error) {
	var summary contracts.DashboardSummary
	if err := c.FetchJSON(ctx, "/v1/dashboard/summary", &summary); err != nil {
		return contracts.DashboardSummary{}, err
	}
	return summary, nil
}

func (c *Client) TimeSeries(ctx context.Context, hours int) ([]contracts.SeriesPoint, error) {
	return fetchItems[contracts.SeriesPoint](ctx, c, fmt.Sprintf("/v1/dashboard/timeseries?hours=%d", hours))
}

func (c *Client) Hotspots(ctx context.Context, hours, limit int) ([]contracts.Hotspot, error) {
	return fetchItems[contracts.Hotspot](ctx, c, fmt.Sprintf("/v1/dashboard/hotspots?hours=%d&limit=%d", hours, limit))
}

func (c *Client) OpenAlerts(ctx context.Context, limit int) ([]contracts.AlertRecord, error) {
	return fetchItems[contracts.AlertRecord](ctx, c, fmt.Sprintf("/v1/alerts?status=open&limit=%d", limit))
}

func (c *Client) Risks(ctx context.Context, limit int) ([]contracts.RiskEvent, error) {
	return fetchItems[contracts.RiskEvent](ctx, c, fmt.Sprintf("/v1/risks?limit=%d", limit))
}

func (c *Client) TransitionAlert(ctx context.Context, id contracts.ID, action contracts.AlertAction) (contracts.TransitionResult, error) {
	var result contracts.TransitionResult
	path := fmt.Sprintf("/v1/alerts/%s/%s", url.PathEscape(string(id)), action)
	if err := c.Patch(ctx, path, &result); err != nil {
		return contracts.TransitionResult{}, err
	}
	return result, nil
}

func fetchItems[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var env contracts.ListEnvelope[T]
	if err := c.FetchJSON(ctx, path, &env); err != nil {
		return nil, err
	}
	if env.Items == nil {
		return []T{}, nil
	}
	return env.Items, nil
}
