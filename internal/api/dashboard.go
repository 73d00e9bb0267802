package api

import "context"

// DashboardSummaryView fetches the aggregate counters shown on the
// dashboard.
func (c *Client) DashboardSummaryView(ctx context.Context) (*DashboardSummary, error) {
	var out DashboardSummary
	if err := c.get(ctx, "/dashboard/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentBuilds fetches the most recent package builds for the dashboard.
func (c *Client) RecentBuilds(ctx context.Context) ([]Build, error) {
	var out []Build
	if err := c.get(ctx, "/dashboard/recent-builds", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
