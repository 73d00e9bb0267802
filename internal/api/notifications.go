package api

import (
	"context"
	"net/url"
	"strconv"
)

// NotificationListParams filters GET /notifications.
type NotificationListParams struct {
	UnreadOnly bool
	Limit      int
}

// ListNotifications returns operator notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, p NotificationListParams) ([]Notification, error) {
	q := url.Values{}
	if p.UnreadOnly {
		q.Set("unread", "true")
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	var out []Notification
	if err := c.get(ctx, "/notifications", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadNotificationCount returns the number of unread notifications.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out int
	if err := c.get(ctx, "/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.put(ctx, "/notifications/"+formatID(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.put(ctx, "/notifications/read-all", nil, nil)
}
