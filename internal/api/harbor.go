package api

import (
	"context"
	"net/url"
	"strconv"
)

// TriggerHarborSync starts a manual registry synchronization run on the
// backend. The run is asynchronous; progress lands in the sync logs.
func (c *Client) TriggerHarborSync(ctx context.Context) error {
	return c.post(ctx, "/harbor/sync", nil, nil)
}

// SyncLogParams filters GET /harbor/sync-logs.
type SyncLogParams struct {
	Limit int
}

// ListSyncLogs returns registry-synchronization attempts, newest first.
func (c *Client) ListSyncLogs(ctx context.Context, p SyncLogParams) ([]SyncLog, error) {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	var out []SyncLog
	if err := c.get(ctx, "/harbor/sync-logs", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
