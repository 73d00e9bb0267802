package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// StartBuild submits one package-assembly job. The returned Build carries
// the backend-computed hash used for all later polling and download; the
// client never constructs that hash itself.
func (c *Client) StartBuild(ctx context.Context, req BuildRequest) (*Build, error) {
	var out Build
	if err := c.post(ctx, "/packages/build", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildListParams filters GET /packages.
type BuildListParams struct {
	Page       int
	Size       int
	CustomerID int64
	Status     string
}

// ListBuilds returns one page of builds plus the total page count.
func (c *Client) ListBuilds(ctx context.Context, p BuildListParams) ([]Build, int, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.CustomerID > 0 {
		q.Set("customerId", formatID(p.CustomerID))
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/packages", q, &raw); err != nil {
		return nil, 0, err
	}
	return decodeList[Build](raw)
}

// GetBuild fetches one build by numeric id.
func (c *Client) GetBuild(ctx context.Context, id int64) (*Build, error) {
	var out Build
	if err := c.get(ctx, "/packages/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBuildByHash fetches one build by its content hash.
func (c *Client) GetBuildByHash(ctx context.Context, hash string) (*Build, error) {
	var out Build
	if err := c.get(ctx, "/packages/hash/"+url.PathEscape(hash), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBuildStatusByHash fetches the poll payload for one build.
func (c *Client) GetBuildStatusByHash(ctx context.Context, hash string) (*BuildStatus, error) {
	var out BuildStatus
	if err := c.get(ctx, "/packages/hash/"+url.PathEscape(hash)+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadPackage fetches the assembled bundle as a raw binary payload.
// The body never goes through JSON unwrapping.
func (c *Client) DownloadPackage(ctx context.Context, hash string) ([]byte, error) {
	return c.Download(ctx, "/packages/download/"+url.PathEscape(hash))
}
